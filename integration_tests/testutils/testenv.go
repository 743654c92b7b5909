package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/integration_tests/containers"
	"github.com/Podium-Debate/podium-engine/internal/db/bundb"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
)

// TestEnvironment holds all resources needed for integration testing.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	DSN           string
	EventBus      eventbus.EventBus
	NatsConn      *nats.Conn
	Config        *config.Config
	T             *testing.T

	testCount      int
	recreateAfter  int
	lastRecreation time.Time
}

// NewTestEnvironment creates a test environment backed by Postgres and
// NATS containers, with all migrations applied.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())

	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		T:             t,
		recreateAfter: 20,
	}

	if err := env.setupContainers(ctx); err != nil {
		cancel()
		return nil, err
	}

	env.lastRecreation = time.Now()
	return env, nil
}

func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.DSN = pgConnStr

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		pgContainer.Terminate(ctx)
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	cfg := &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
	}
	env.Config = cfg

	db, err := bundb.NewBunDB(ctx, cfg.Postgres)
	if err != nil {
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to open bun DB: %w", err)
	}
	env.DB = db

	if err := RunMigrations(ctx, db, pgConnStr); err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	natsConn, err := nats.Connect(natsURL, nats.Timeout(10*time.Second))
	if err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	env.NatsConn = natsConn

	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus, err := eventbus.New(natsURL, discardLogger)
	if err != nil {
		natsConn.Close()
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to create EventBus: %w", err)
	}
	env.EventBus = bus

	return nil
}

// MaybeRecreateContainers recreates the containers periodically so a
// long test run does not accumulate JetStream and Postgres state.
func (env *TestEnvironment) MaybeRecreateContainers(ctx context.Context) error {
	env.testCount++

	shouldRecreate := env.testCount%env.recreateAfter == 0 ||
		time.Since(env.lastRecreation) > 45*time.Minute

	if shouldRecreate {
		log.Printf("Recreating containers after %d tests or %v elapsed for stability",
			env.testCount, time.Since(env.lastRecreation))
		return env.RecreateContainers(ctx)
	}
	return nil
}

// RecreateContainers terminates existing containers and creates new ones.
func (env *TestEnvironment) RecreateContainers(ctx context.Context) error {
	oldNats := env.NatsContainer
	oldPg := env.PgContainer

	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
		env.EventBus = nil
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
		env.NatsConn = nil
	}
	if env.DB != nil {
		env.DB.Close()
		env.DB = nil
	}

	terminateCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if oldNats != nil {
		if err := oldNats.Terminate(terminateCtx); err != nil {
			log.Printf("Error terminating old NATS container: %v", err)
		}
	}
	if oldPg != nil {
		if err := oldPg.Terminate(terminateCtx); err != nil {
			log.Printf("Error terminating old PostgreSQL container: %v", err)
		}
	}

	time.Sleep(2 * time.Second)

	if err := env.setupContainers(ctx); err != nil {
		return fmt.Errorf("failed to recreate containers: %w", err)
	}

	env.lastRecreation = time.Now()
	return nil
}

// CheckContainerHealth verifies that containers are running and responsive.
func (env *TestEnvironment) CheckContainerHealth() error {
	ctx, cancel := context.WithTimeout(env.Ctx, 10*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		state, err := env.NatsContainer.State(ctx)
		if err != nil || !state.Running {
			return fmt.Errorf("NATS container not healthy: err=%v", err)
		}
	}
	if env.PgContainer != nil {
		state, err := env.PgContainer.State(ctx)
		if err != nil || !state.Running {
			return fmt.Errorf("PostgreSQL container not healthy: err=%v", err)
		}
	}
	if env.DB != nil {
		var result int
		if err := env.DB.NewSelect().ColumnExpr("1").Scan(ctx, &result); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	}
	if env.NatsConn != nil && !env.NatsConn.IsConnected() {
		return fmt.Errorf("NATS connection not healthy")
	}

	return nil
}

// DeepCleanup truncates all engine tables and clears queued river jobs
// between tests.
func (env *TestEnvironment) DeepCleanup() error {
	if err := CleanupDatabase(env.Ctx, env.DB); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	return nil
}

// Cleanup tears down all resources created for testing.
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
}

func cleanupContainers(ctx context.Context, pg *postgres.PostgresContainer, natsC testcontainers.Container) {
	if pg != nil {
		pg.Terminate(ctx)
	}
	if natsC != nil {
		natsC.Terminate(ctx)
	}
}
