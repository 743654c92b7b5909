package pairingmigrations

import (
	"context"
	"fmt"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating debates table...")

		_, err := db.NewCreateTable().Model((*pairingdb.Debate)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create debates table: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*pairingdb.Debate)(nil)).
			Index("idx_debates_round_id").
			IfNotExists().
			Column("round_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create debates round index: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*pairingdb.Debate)(nil)).
			Index("idx_debates_tournament_id").
			IfNotExists().
			Column("tournament_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create debates tournament index: %w", err)
		}

		fmt.Println("Debates table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back debates table...")

		_, err := db.NewDropTable().Model((*pairingdb.Debate)(nil)).IfExists().Cascade().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop debates table: %w", err)
		}

		fmt.Println("Debates table dropped successfully!")
		return nil
	})
}
