package ballotservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

func TestNormalizeSpeakerScore(t *testing.T) {
	tests := []struct {
		name    string
		input   ballotevents.SpeakerScoreInput
		want    float64
		wantErr string
	}{
		{
			name:  "perfect rubric maps to the top of the scale",
			input: ballotevents.SpeakerScoreInput{RoleFulfillment: 25, ArgumentationClash: 25, ContentDevelopment: 25, StyleStrategyDelivery: 25},
			want:  30.0,
		},
		{
			name:  "zero rubric is floored",
			input: ballotevents.SpeakerScoreInput{},
			want:  16.3,
		},
		{
			name:  "low raw total is floored",
			input: ballotevents.SpeakerScoreInput{RoleFulfillment: 10, ArgumentationClash: 5, ContentDevelopment: 8, StyleStrategyDelivery: 7},
			want:  16.3,
		},
		{
			name:  "mid rubric rounds to one decimal",
			input: ballotevents.SpeakerScoreInput{RoleFulfillment: 20, ArgumentationClash: 20, ContentDevelopment: 20, StyleStrategyDelivery: 20},
			want:  24.3,
		},
		{
			name:  "near perfect rubric",
			input: ballotevents.SpeakerScoreInput{RoleFulfillment: 24, ArgumentationClash: 24, ContentDevelopment: 24, StyleStrategyDelivery: 23},
			want:  28.6,
		},
		{
			name:    "negative sub-score names the field",
			input:   ballotevents.SpeakerScoreInput{RoleFulfillment: -1, ArgumentationClash: 20, ContentDevelopment: 20, StyleStrategyDelivery: 20},
			wantErr: "role_fulfillment",
		},
		{
			name:    "over-range argumentation names the field",
			input:   ballotevents.SpeakerScoreInput{RoleFulfillment: 20, ArgumentationClash: 25.5, ContentDevelopment: 20, StyleStrategyDelivery: 20},
			wantErr: "argumentation_clash",
		},
		{
			name:    "over-range content names the field",
			input:   ballotevents.SpeakerScoreInput{RoleFulfillment: 20, ArgumentationClash: 20, ContentDevelopment: 26, StyleStrategyDelivery: 20},
			wantErr: "content_development",
		},
		{
			name:    "over-range style names the field",
			input:   ballotevents.SpeakerScoreInput{RoleFulfillment: 20, ArgumentationClash: 20, ContentDevelopment: 20, StyleStrategyDelivery: 100},
			wantErr: "style_strategy_delivery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSpeakerScore(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				var validationErr *types.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestNormalizeScoresFailsWholeBatch(t *testing.T) {
	inputs := []ballotevents.SpeakerScoreInput{
		{RoleFulfillment: 20, ArgumentationClash: 20, ContentDevelopment: 20, StyleStrategyDelivery: 20},
		{RoleFulfillment: 30, ArgumentationClash: 20, ContentDevelopment: 20, StyleStrategyDelivery: 20},
	}

	scores, err := normalizeScores(inputs)
	require.Error(t, err)
	assert.Nil(t, scores)
}

func TestNormalizeScoresCarriesFinalValue(t *testing.T) {
	inputs := []ballotevents.SpeakerScoreInput{
		{SpeakerID: "speaker-1", RoleFulfillment: 25, ArgumentationClash: 25, ContentDevelopment: 25, StyleStrategyDelivery: 25, Comments: "flawless", BiasFlag: true},
	}

	scores, err := normalizeScores(inputs)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.InDelta(t, 30.0, scores[0].Score, 0.001)
	assert.Equal(t, types.UserID("speaker-1"), scores[0].SpeakerID)
	assert.Equal(t, "flawless", scores[0].Comments)
	assert.True(t, scores[0].BiasFlag)
}
