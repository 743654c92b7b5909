package pairingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// PairingDBImpl implements Repository on top of bun.
type PairingDBImpl struct{}

func NewRepository() *PairingDBImpl {
	return &PairingDBImpl{}
}

func (r *PairingDBImpl) GetTournament(ctx context.Context, db bun.IDB, id types.TournamentID) (*TournamentRef, error) {
	tournament := new(TournamentRef)
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

func (r *PairingDBImpl) GetRound(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, roundNumber int) (*RoundRef, error) {
	round := new(RoundRef)
	err := db.NewSelect().
		Model(round).
		Where("r.tournament_id = ?", tournamentID).
		Where("r.round_number = ?", roundNumber).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch round %d of tournament %s: %w", roundNumber, tournamentID, err)
	}
	return round, nil
}

func (r *PairingDBImpl) ListRoundsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]RoundRef, error) {
	var rounds []RoundRef
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

func (r *PairingDBImpl) ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]Debate, error) {
	var debates []Debate
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

func (r *PairingDBImpl) ListDebatesForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]Debate, error) {
	var debates []Debate
	err := db.NewSelect().
		Model(&debates).
		Where("d.tournament_id = ?", tournamentID).
		Order("d.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates for tournament %s: %w", tournamentID, err)
	}
	return debates, nil
}

func (r *PairingDBImpl) DeleteDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) error {
	_, err := db.NewDelete().
		Model((*Debate)(nil)).
		Where("round_id = ?", roundID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete debates for round %s: %w", roundID, err)
	}
	return nil
}

func (r *PairingDBImpl) InsertDebates(ctx context.Context, db bun.IDB, debates []*Debate) error {
	if len(debates) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&debates).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert %d debates: %w", len(debates), err)
	}
	return nil
}

func (r *PairingDBImpl) GetTeamsByIDs(ctx context.Context, db bun.IDB, ids []types.TeamID) (map[types.TeamID]*TeamRef, error) {
	result := make(map[types.TeamID]*TeamRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var teams []*TeamRef
	err := db.NewSelect().
		Model(&teams).
		Where("tm.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch teams: %w", err)
	}
	for _, team := range teams {
		result[team.ID] = team
	}
	return result, nil
}

func (r *PairingDBImpl) ListTeamsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]TeamRef, error) {
	var teams []TeamRef
	err := db.NewSelect().
		Model(&teams).
		Where("tm.tournament_id = ?", tournamentID).
		Order("tm.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %s: %w", tournamentID, err)
	}
	return teams, nil
}

func (r *PairingDBImpl) ListJudges(ctx context.Context, db bun.IDB) ([]JudgeRef, error) {
	var judges []JudgeRef
	err := db.NewSelect().
		Model(&judges).
		Order("j.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	return judges, nil
}

func (r *PairingDBImpl) GetSchoolsByIDs(ctx context.Context, db bun.IDB, ids []types.SchoolID) (map[types.SchoolID]*SchoolRef, error) {
	result := make(map[types.SchoolID]*SchoolRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var schools []*SchoolRef
	err := db.NewSelect().
		Model(&schools).
		Where("s.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch schools: %w", err)
	}
	for _, school := range schools {
		result[school.ID] = school
	}
	return result, nil
}

func (r *PairingDBImpl) GetJudgesByIDs(ctx context.Context, db bun.IDB, ids []types.UserID) (map[types.UserID]*JudgeRef, error) {
	result := make(map[types.UserID]*JudgeRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var judges []*JudgeRef
	err := db.NewSelect().
		Model(&judges).
		Where("j.user_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch judges: %w", err)
	}
	for _, judge := range judges {
		result[judge.UserID] = judge
	}
	return result, nil
}

func (r *PairingDBImpl) ListJudgeFeedback(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]JudgeFeedbackRef, error) {
	var feedback []JudgeFeedbackRef
	err := db.NewSelect().
		Model(&feedback).
		ColumnExpr("b.debate_id, b.judge_id, b.speaker_scores").
		ColumnExpr("r.round_number AS round_number").
		Join("JOIN debates AS d ON d.id = b.debate_id").
		Join("JOIN rounds AS r ON r.id = d.round_id").
		Where("d.tournament_id = ?", tournamentID).
		Where("b.feedback_submitted = TRUE").
		Order("r.round_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list judge feedback for tournament %s: %w", tournamentID, err)
	}
	return feedback, nil
}
