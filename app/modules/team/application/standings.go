package teamservice

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/uptrace/bun"

	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// StandingEntry is one team's line on the tournament table.
type StandingEntry struct {
	TeamID         types.TeamID     `json:"team_id"`
	TeamName       string           `json:"team_name"`
	Status         types.TeamStatus `json:"status"`
	Wins           int              `json:"wins"`
	TotalPoints    float64          `json:"total_points"`
	DebatesCounted int              `json:"debates_counted"`
}

// StandingsView is the full tournament table.
type StandingsView struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	Entries      []StandingEntry    `json:"entries"`
	ComputedAt   time.Time          `json:"computed_at"`
}

// GetStandings recomputes the table from completed debates on every
// read. Wins and points are derived, never stored, so the view is
// consistent by construction; the river snapshot exists for consumers
// that want a cheap cached copy.
func (s *TeamService) GetStandings(ctx context.Context, tournamentID types.TournamentID) (*StandingsView, error) {
	teams, err := s.repo.ListTeamsForTournament(ctx, s.db, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, types.NewNotFoundError("tournament teams", tournamentID.String())
	}
	debates, err := s.repo.ListCompletedDebates(ctx, s.db, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing completed debates: %w", err)
	}

	view := &StandingsView{
		TournamentID: tournamentID,
		Entries:      computeStandings(teams, debates),
		ComputedAt:   time.Now().UTC(),
	}
	return view, nil
}

// RefreshStandings recomputes the table and writes it to the
// team_standings snapshot rows. Called by the standings queue worker
// after every round completion.
func (s *TeamService) RefreshStandings(ctx context.Context, tournamentID types.TournamentID) error {
	view, err := s.GetStandings(ctx, tournamentID)
	if err != nil {
		return err
	}

	rows := make([]*teamdb.TeamStanding, 0, len(view.Entries))
	for _, entry := range view.Entries {
		rows = append(rows, &teamdb.TeamStanding{
			TeamID:         entry.TeamID,
			TournamentID:   tournamentID,
			Wins:           entry.Wins,
			TotalPoints:    entry.TotalPoints,
			DebatesCounted: entry.DebatesCounted,
			ComputedAt:     view.ComputedAt,
		})
	}

	return s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		return s.repo.UpsertStandings(ctx, tx, rows)
	})
}

// computeStandings folds completed debates into per-team totals and
// orders the table by wins, then points, then name for stability.
func computeStandings(teams []teamdb.Team, debates []teamdb.DebateRow) []StandingEntry {
	byTeam := make(map[types.TeamID]*StandingEntry, len(teams))
	entries := make([]StandingEntry, 0, len(teams))
	for _, team := range teams {
		byTeam[team.ID] = &StandingEntry{
			TeamID:   team.ID,
			TeamName: team.Name,
			Status:   team.Status,
		}
	}

	for _, debate := range debates {
		if debate.PropositionTeamID != nil {
			if entry, ok := byTeam[*debate.PropositionTeamID]; ok {
				entry.TotalPoints += debate.PropositionTeamPoints
				entry.DebatesCounted++
			}
		}
		if debate.OppositionTeamID != nil {
			if entry, ok := byTeam[*debate.OppositionTeamID]; ok {
				entry.TotalPoints += debate.OppositionTeamPoints
				entry.DebatesCounted++
			}
		}
		if debate.WinningTeamID != nil {
			if entry, ok := byTeam[*debate.WinningTeamID]; ok {
				entry.Wins++
			}
		}
	}

	for _, team := range teams {
		entries = append(entries, *byTeam[team.ID])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].TeamName < entries[j].TeamName
	})
	return entries
}
