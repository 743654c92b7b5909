package rounddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// RoundDBImpl implements Repository on top of bun.
type RoundDBImpl struct{}

func NewRepository() *RoundDBImpl {
	return &RoundDBImpl{}
}

func (r *RoundDBImpl) GetTournament(ctx context.Context, db bun.IDB, id types.TournamentID) (*Tournament, error) {
	tournament := new(Tournament)
	err := db.NewSelect().
		Model(tournament).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tournament %s: %w", id, err)
	}
	return tournament, nil
}

func (r *RoundDBImpl) UpdateTournamentStatus(ctx context.Context, db bun.IDB, id types.TournamentID, status types.TournamentStatus) error {
	res, err := db.NewUpdate().
		Model((*Tournament)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tournament %s status: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *RoundDBImpl) GetRound(ctx context.Context, db bun.IDB, id types.RoundID) (*Round, error) {
	round := new(Round)
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

func (r *RoundDBImpl) ListRoundsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]Round, error) {
	var rounds []Round
	err := db.NewSelect().
		Model(&rounds).
		Where("r.tournament_id = ?", tournamentID).
		Order("r.round_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for tournament %s: %w", tournamentID, err)
	}
	return rounds, nil
}

func (r *RoundDBImpl) ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]DebateListRow, error) {
	var debates []DebateListRow
	err := db.NewSelect().
		Model(&debates).
		Where("d.round_id = ?", roundID).
		Order("d.room_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates for round %s: %w", roundID, err)
	}
	return debates, nil
}

func (r *RoundDBImpl) CountFinalBallotsByDebate(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error) {
	var rows []struct {
		DebateID types.DebateID `bun:"debate_id"`
		Count    int            `bun:"count"`
	}
	err := db.NewSelect().
		TableExpr("ballots AS b").
		ColumnExpr("b.debate_id").
		ColumnExpr("COUNT(*) AS count").
		Join("JOIN debates AS d ON d.id = b.debate_id").
		Where("d.round_id = ?", roundID).
		Where("b.feedback_submitted = TRUE").
		GroupExpr("b.debate_id").
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

func (r *RoundDBImpl) FlaggedDebates(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]bool, error) {
	var ids []types.DebateID
	err := db.NewSelect().
		TableExpr("ballots AS b").
		ColumnExpr("DISTINCT b.debate_id").
		Join("JOIN debates AS d ON d.id = b.debate_id").
		Where("d.round_id = ?", roundID).
		Where("jsonb_array_length(COALESCE(b.flags, '[]'::jsonb)) > 0").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list flagged debates for round %s: %w", roundID, err)
	}
	flagged := make(map[types.DebateID]bool, len(ids))
	for _, id := range ids {
		flagged[id] = true
	}
	return flagged, nil
}
