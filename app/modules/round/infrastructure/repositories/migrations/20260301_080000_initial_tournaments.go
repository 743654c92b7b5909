package roundmigrations

import (
	"context"
	"fmt"

	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournaments and rounds tables...")

		_, err := db.NewCreateTable().Model((*rounddb.Tournament)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create tournaments table: %w", err)
		}

		_, err = db.NewCreateTable().Model((*rounddb.Round)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create rounds table: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*rounddb.Round)(nil)).
			Index("idx_rounds_tournament_round").
			IfNotExists().
			Unique().
			Column("tournament_id", "round_number", "type").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create rounds unique index: %w", err)
		}

		fmt.Println("Tournaments and rounds tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back tournaments and rounds tables...")

		_, err := db.NewDropTable().Model((*rounddb.Round)(nil)).IfExists().Cascade().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop rounds table: %w", err)
		}

		_, err = db.NewDropTable().Model((*rounddb.Tournament)(nil)).IfExists().Cascade().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop tournaments table: %w", err)
		}

		fmt.Println("Tournaments and rounds tables dropped successfully!")
		return nil
	})
}
