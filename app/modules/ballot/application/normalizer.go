package ballotservice

import (
	"fmt"
	"math"

	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Speaker score normalization. The rubric's maximum raw value is 100
// (four sub-scores of 25) plus a fixed 5-point attendance credit,
// rescaled onto the 30-point speaker scale with a 16.3 safety-net
// floor. Applied once at submission, never recomputed later.
const (
	subScoreMax       = 25.0
	attendanceBonus   = 5.0
	rubricDenominator = 105.0
	speakerScale      = 30.0
	scoreFloor        = 16.3
)

// NormalizeSpeakerScore validates a raw rubric submission and returns
// the speaker's final score on the 30-point scale, rounded to one
// decimal. An out-of-range sub-score fails with a ValidationError
// naming the field.
func NormalizeSpeakerScore(input ballotevents.SpeakerScoreInput) (float64, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"role_fulfillment", input.RoleFulfillment},
		{"argumentation_clash", input.ArgumentationClash},
		{"content_development", input.ContentDevelopment},
		{"style_strategy_delivery", input.StyleStrategyDelivery},
	}

	sum := 0.0
	for _, field := range fields {
		if field.value < 0 || field.value > subScoreMax {
			return 0, types.NewValidationError(
				fmt.Sprintf("%s must be between 0 and %g, got %g", field.name, subScoreMax, field.value),
			)
		}
		sum += field.value
	}

	final := ((sum + attendanceBonus) / rubricDenominator) * speakerScale
	if final < scoreFloor {
		final = scoreFloor
	}
	return math.Round(final*10) / 10, nil
}

// normalizeScores runs the normalizer over every speaker score on a
// ballot, failing the whole submission on the first invalid field.
func normalizeScores(inputs []ballotevents.SpeakerScoreInput) ([]types.SpeakerScore, error) {
	scores := make([]types.SpeakerScore, 0, len(inputs))
	for _, input := range inputs {
		final, err := NormalizeSpeakerScore(input)
		if err != nil {
			return nil, err
		}
		scores = append(scores, types.SpeakerScore{
			SpeakerID:             input.SpeakerID,
			TeamID:                input.TeamID,
			RoleFulfillment:       input.RoleFulfillment,
			ArgumentationClash:    input.ArgumentationClash,
			ContentDevelopment:    input.ContentDevelopment,
			StyleStrategyDelivery: input.StyleStrategyDelivery,
			Score:                 final,
			Comments:              input.Comments,
			BiasFlag:              input.BiasFlag,
		})
	}
	return scores, nil
}
