package teamintegrationtests

import (
	"testing"

	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
)

// Standings are recomputed from completed debates against the real
// database, and a refresh persists the snapshot rows.
func TestStandingsFromCompletedDebates(t *testing.T) {
	deps := SetupTestTeamService(t)
	fixture := seedTournament(t, deps, 3)

	alpha, bravo, charlie := fixture.Teams[0], fixture.Teams[1], fixture.Teams[2]

	seedCompletedDebate(t, deps, fixture, alpha, bravo, alpha, 84.5, 79.0)
	seedCompletedDebate(t, deps, fixture, charlie, alpha, alpha, 80.0, 86.0)
	seedCompletedDebate(t, deps, fixture, bravo, charlie, charlie, 77.5, 82.0)

	view, err := deps.Service.GetStandings(deps.Ctx, fixture.Tournament.ID)
	if err != nil {
		t.Fatalf("GetStandings returned unexpected error: %v", err)
	}
	if len(view.Entries) != 3 {
		t.Fatalf("Standings entries = %d, want 3", len(view.Entries))
	}

	first := view.Entries[0]
	if first.TeamID != alpha.ID {
		t.Errorf("Leader = %s, want %s (two wins)", first.TeamName, alpha.Name)
	}
	if first.Wins != 2 {
		t.Errorf("Leader wins = %d, want 2", first.Wins)
	}
	if first.TotalPoints != 170.5 {
		t.Errorf("Leader points = %v, want 170.5", first.TotalPoints)
	}
	if first.DebatesCounted != 2 {
		t.Errorf("Leader debates counted = %d, want 2", first.DebatesCounted)
	}
	if view.Entries[1].TeamID != charlie.ID {
		t.Errorf("Second place = %s, want %s (one win)", view.Entries[1].TeamName, charlie.Name)
	}
	if view.Entries[2].TeamID != bravo.ID {
		t.Errorf("Third place = %s, want %s (no wins)", view.Entries[2].TeamName, bravo.Name)
	}

	if err := deps.Service.RefreshStandings(deps.Ctx, fixture.Tournament.ID); err != nil {
		t.Fatalf("RefreshStandings returned unexpected error: %v", err)
	}

	var rows []*teamdb.TeamStanding
	if err := deps.BunDB.NewSelect().
		Model(&rows).
		Where("ts.tournament_id = ?", fixture.Tournament.ID).
		Scan(deps.Ctx); err != nil {
		t.Fatalf("Failed to load standings snapshot: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Snapshot rows = %d, want 3", len(rows))
	}
	for _, row := range rows {
		if row.TeamID == alpha.ID && row.Wins != 2 {
			t.Errorf("Snapshot wins for leader = %d, want 2", row.Wins)
		}
		if row.ComputedAt.IsZero() {
			t.Errorf("Snapshot for team %s missing computed_at", row.TeamID)
		}
	}
}
