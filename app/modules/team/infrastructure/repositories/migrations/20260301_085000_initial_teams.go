package teammigrations

import (
	"context"
	"fmt"

	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating teams, schools, judges, and team_standings tables...")

		_, err := db.NewCreateTable().Model((*teamdb.School)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create schools table: %w", err)
		}

		_, err = db.NewCreateTable().Model((*teamdb.Team)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create teams table: %w", err)
		}

		_, err = db.NewCreateTable().Model((*teamdb.Judge)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create judges table: %w", err)
		}

		_, err = db.NewCreateTable().Model((*teamdb.TeamStanding)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create team_standings table: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*teamdb.Team)(nil)).
			Index("idx_teams_tournament_id").
			IfNotExists().
			Column("tournament_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create teams tournament index: %w", err)
		}

		fmt.Println("Team tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back team tables...")

		for _, model := range []any{
			(*teamdb.TeamStanding)(nil),
			(*teamdb.Judge)(nil),
			(*teamdb.Team)(nil),
			(*teamdb.School)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop team table: %w", err)
			}
		}

		fmt.Println("Team tables dropped successfully!")
		return nil
	})
}
