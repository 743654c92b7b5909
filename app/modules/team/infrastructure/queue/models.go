package teamqueue

import (
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// StandingsSnapshotJob refreshes the team_standings rows for one
// tournament. Uniqueness is keyed on args, so a burst of round
// completions collapses into a single pending refresh.
type StandingsSnapshotJob struct {
	TournamentID types.TournamentID `json:"tournament_id"`
}

// Kind returns the job type identifier for River.
func (StandingsSnapshotJob) Kind() string { return "standings_snapshot" }

// JobInfo describes a queued job for debugging and monitoring.
type JobInfo struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	TournamentID string `json:"tournament_id"`
	State        string `json:"state"`
	ScheduledAt  string `json:"scheduled_at"`
	Attempt      int    `json:"attempt"`
	MaxAttempts  int    `json:"max_attempts"`
}
