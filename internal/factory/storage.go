package factory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/danielnoveno/hackathon-hooklabai/internal/config"
	storepkg "github.com/danielnoveno/hackathon-hooklabai/internal/store"
	storepg "github.com/danielnoveno/hackathon-hooklabai/internal/store/postgres"
	storelite "github.com/danielnoveno/hackathon-hooklabai/internal/store/sqlite"
)

const storeRetryDelay = 500 * time.Millisecond

// NewStore opens the row store selected by cfg.DBDriver, retrying the
// connection, and applies the schema before returning. The returned *sql.DB
// is owned by the caller.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, *sql.DB, error) {
	var (
		open       func(context.Context) (*sql.DB, error)
		ensure     func(context.Context, *sql.DB) error
		wrap       func(*sql.DB) storepkg.Store
		connTarget string
	)

	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("HOOKLAB_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		open = func(ctx context.Context) (*sql.DB, error) { return storepg.Open(ctx, cfg.PostgresDSN) }
		ensure, wrap, connTarget = storepg.EnsureSchema, storepg.NewWithDB, "postgres"
	case "sqlite":
		open = func(ctx context.Context) (*sql.DB, error) { return storelite.Open(ctx, cfg.SQLitePath) }
		ensure, wrap, connTarget = storelite.EnsureSchema, storelite.NewWithDB, cfg.SQLitePath
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}

	attempts := cfg.StoreConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var db *sql.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = open(ctx)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(storeRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("driver", cfg.DBDriver).Msg("store connect failed; retrying")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}

	bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout(cfg))
	defer cancel()
	if err := ensure(bootstrapCtx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure %s schema: %w", cfg.DBDriver, err)
	}

	log.Debug().Str("driver", cfg.DBDriver).Str("target", connTarget).Msg("store ready")
	return wrap(db), db, nil
}

func bootstrapTimeout(cfg *config.Config) time.Duration {
	if cfg.BootstrapTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
}
