package ballotdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// BallotDBImpl implements Repository on top of bun.
type BallotDBImpl struct{}

func NewRepository() *BallotDBImpl {
	return &BallotDBImpl{}
}

func (r *BallotDBImpl) GetDebate(ctx context.Context, db bun.IDB, id types.DebateID) (*DebateRow, error) {
	debate := new(DebateRow)
	err := db.NewSelect().
		Model(debate).
		Where("d.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch debate %s: %w", id, err)
	}
	return debate, nil
}

func (r *BallotDBImpl) UpdateDebateOutcome(ctx context.Context, db bun.IDB, debate *DebateRow) error {
	res, err := db.NewUpdate().
		Model(debate).
		Column(
			"status",
			"winning_team_id",
			"winning_position",
			"proposition_votes",
			"opposition_votes",
			"proposition_team_points",
			"opposition_team_points",
			"updated_at",
		).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update outcome of debate %s: %w", debate.ID, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *BallotDBImpl) ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]DebateRow, error) {
	var debates []DebateRow
	err := db.NewSelect().
		Model(&debates).
		Where("d.round_id = ?", roundID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates for round %s: %w", roundID, err)
	}
	return debates, nil
}

func (r *BallotDBImpl) GetBallot(ctx context.Context, db bun.IDB, debateID types.DebateID, judgeID types.UserID) (*Ballot, error) {
	ballot := new(Ballot)
	err := db.NewSelect().
		Model(ballot).
		Where("b.debate_id = ?", debateID).
		Where("b.judge_id = ?", judgeID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch ballot for debate %s judge %s: %w", debateID, judgeID, err)
	}
	return ballot, nil
}

func (r *BallotDBImpl) GetBallotByID(ctx context.Context, db bun.IDB, id types.BallotID) (*Ballot, error) {
	ballot := new(Ballot)
	err := db.NewSelect().
		Model(ballot).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch ballot %s: %w", id, err)
	}
	return ballot, nil
}

func (r *BallotDBImpl) UpsertBallot(ctx context.Context, db bun.IDB, ballot *Ballot) error {
	_, err := db.NewInsert().
		Model(ballot).
		On("CONFLICT (debate_id, judge_id) DO UPDATE").
		Set("winning_team_id = EXCLUDED.winning_team_id").
		Set("winning_position = EXCLUDED.winning_position").
		Set("speaker_scores = EXCLUDED.speaker_scores").
		Set("notes = EXCLUDED.notes").
		Set("feedback_submitted = EXCLUDED.feedback_submitted").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert ballot for debate %s judge %s: %w", ballot.DebateID, ballot.JudgeID, err)
	}
	return nil
}

func (r *BallotDBImpl) UpdateBallot(ctx context.Context, db bun.IDB, ballot *Ballot) error {
	res, err := db.NewUpdate().
		Model(ballot).
		Column(
			"winning_team_id",
			"winning_position",
			"speaker_scores",
			"notes",
			"flags",
			"feedback_submitted",
			"updated_at",
		).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update ballot %s: %w", ballot.ID, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *BallotDBImpl) ListFinalBallots(ctx context.Context, db bun.IDB, debateID types.DebateID) ([]Ballot, error) {
	var ballots []Ballot
	err := db.NewSelect().
		Model(&ballots).
		Where("b.debate_id = ?", debateID).
		Where("b.feedback_submitted = TRUE").
		Order("b.judge_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list final ballots for debate %s: %w", debateID, err)
	}
	return ballots, nil
}

func (r *BallotDBImpl) CountFinalBallotsByDebate(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error) {
	var rows []struct {
		DebateID types.DebateID `bun:"debate_id"`
		Count    int            `bun:"count"`
	}
	err := db.NewSelect().
		Model((*Ballot)(nil)).
		ColumnExpr("b.debate_id").
		ColumnExpr("count(*) AS count").
		Join("JOIN debates AS d ON d.id = b.debate_id").
		Where("d.round_id = ?", roundID).
		Where("b.feedback_submitted = TRUE").
		Group("b.debate_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count final ballots for round %s: %w", roundID, err)
	}
	counts := make(map[types.DebateID]int, len(rows))
	for _, row := range rows {
		counts[row.DebateID] = row.Count
	}
	return counts, nil
}

func (r *BallotDBImpl) GetRound(ctx context.Context, db bun.IDB, id types.RoundID) (*RoundRow, error) {
	round := new(RoundRow)
	err := db.NewSelect().
		Model(round).
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch round %s: %w", id, err)
	}
	return round, nil
}

// CompleteRound marks a round completed with the given end time. The
// status guard makes the cascade idempotent: a second call reports
// false instead of touching the row again.
func (r *BallotDBImpl) CompleteRound(ctx context.Context, db bun.IDB, roundID types.RoundID, endTime time.Time) (bool, error) {
	res, err := db.NewUpdate().
		Model((*RoundRow)(nil)).
		Set("status = ?", types.RoundStatusCompleted).
		Set("end_time = ?", endTime).
		Where("id = ?", roundID).
		Where("status != ?", types.RoundStatusCompleted).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to complete round %s: %w", roundID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for round %s: %w", roundID, err)
	}
	return rows > 0, nil
}
