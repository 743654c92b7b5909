package teamdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// TeamDBImpl implements Repository on top of bun.
type TeamDBImpl struct{}

func NewRepository() *TeamDBImpl {
	return &TeamDBImpl{}
}

func (r *TeamDBImpl) GetTeam(ctx context.Context, db bun.IDB, id types.TeamID) (*Team, error) {
	team := new(Team)
	err := db.NewSelect().
		Model(team).
		Where("tm.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch team %s: %w", id, err)
	}
	return team, nil
}

func (r *TeamDBImpl) ListTeamsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]Team, error) {
	var teams []Team
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

func (r *TeamDBImpl) UpdateTeamStatus(ctx context.Context, db bun.IDB, id types.TeamID, status types.TeamStatus) error {
	res, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update team %s status: %w", id, err)
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

func (r *TeamDBImpl) ListPendingDebatesForTeam(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, teamID types.TeamID) ([]DebateRow, error) {
	var debates []DebateRow
	err := db.NewSelect().
		Model(&debates).
		Where("d.tournament_id = ?", tournamentID).
		Where("d.status = ?", types.DebateStatusPending).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("d.proposition_team_id = ?", teamID).
				WhereOr("d.opposition_team_id = ?", teamID)
		}).
		Order("d.room_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending debates for team %s: %w", teamID, err)
	}
	return debates, nil
}

func (r *TeamDBImpl) UpdateDebatePairing(ctx context.Context, db bun.IDB, debate *DebateRow) error {
	res, err := db.NewUpdate().
		Model(debate).
		Column("proposition_team_id", "opposition_team_id", "is_public_speaking", "status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update debate %s pairing: %w", debate.ID, err)
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

func (r *TeamDBImpl) ListCompletedDebates(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]DebateRow, error) {
	var debates []DebateRow
	err := db.NewSelect().
		Model(&debates).
		Where("d.tournament_id = ?", tournamentID).
		Where("d.status = ?", types.DebateStatusCompleted).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed debates for tournament %s: %w", tournamentID, err)
	}
	return debates, nil
}

func (r *TeamDBImpl) UpsertStandings(ctx context.Context, db bun.IDB, standings []*TeamStanding) error {
	if len(standings) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&standings).
		On("CONFLICT (team_id) DO UPDATE").
		Set("tournament_id = EXCLUDED.tournament_id").
		Set("wins = EXCLUDED.wins").
		Set("total_points = EXCLUDED.total_points").
		Set("debates_counted = EXCLUDED.debates_counted").
		Set("computed_at = EXCLUDED.computed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert %d standings rows: %w", len(standings), err)
	}
	return nil
}

func (r *TeamDBImpl) ListStandings(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]TeamStanding, error) {
	var standings []TeamStanding
	err := db.NewSelect().
		Model(&standings).
		Where("ts.tournament_id = ?", tournamentID).
		Order("ts.wins DESC").
		Order("ts.total_points DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %s: %w", tournamentID, err)
	}
	return standings, nil
}
