package ballotmigrations

import (
	"context"
	"fmt"

	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ballots table...")

		_, err := db.NewCreateTable().Model((*ballotdb.Ballot)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create ballots table: %w", err)
		}

		// One ballot per judge per debate.
		_, err = db.NewCreateIndex().
			Model((*ballotdb.Ballot)(nil)).
			Index("idx_ballots_debate_judge").
			IfNotExists().
			Unique().
			Column("debate_id", "judge_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create ballots unique index: %w", err)
		}

		fmt.Println("Ballots table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back ballots table...")

		_, err := db.NewDropTable().Model((*ballotdb.Ballot)(nil)).IfExists().Cascade().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop ballots table: %w", err)
		}

		fmt.Println("Ballots table dropped successfully!")
		return nil
	})
}
