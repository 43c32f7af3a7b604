// Package hookservice assembles and runs the hooklab HTTP service.
package hookservice

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api"
	"github.com/danielnoveno/hackathon-hooklabai/internal/chain"
	"github.com/danielnoveno/hackathon-hooklabai/internal/config"
	"github.com/danielnoveno/hackathon-hooklabai/internal/factory"
	"github.com/danielnoveno/hackathon-hooklabai/internal/health"
	"github.com/danielnoveno/hackathon-hooklabai/internal/hooks"
	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
	"github.com/danielnoveno/hackathon-hooklabai/internal/logger"
	"github.com/danielnoveno/hackathon-hooklabai/internal/services"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
	"github.com/danielnoveno/hackathon-hooklabai/internal/trends"
)

// deps are the long-lived components built at startup.
type deps struct {
	store  store.Store
	db     *sql.DB
	oracle *chain.Oracle
	model  llm.Model
	trends *trends.Service
	cache  *trends.RedisCache // nil without Redis
}

func (d *deps) close(log zerolog.Logger) {
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("trend cache close failed")
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}
}

// Run starts the hooklab HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("hooklab-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("llm_provider", cfg.LLMProvider).
		Str("trend_channel", cfg.TrendChannel).
		Msg("Hooklab service starting")

	ctx, stop := newServerContext()
	defer stop()

	d, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.close(log)

	svcHealth := startHealthCheckers(ctx, cfg, log, d)
	router := buildRouter(cfg, log, d, svcHealth)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies builds the store (required) and the upstream clients.
// Upstreams are never fatal: the workflow degrades when they are down.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*deps, error) {
	st, db, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, err
	}
	trendSvc, cache := factory.NewTrendService(cfg, log)
	return &deps{
		store:  st,
		db:     db,
		oracle: factory.NewOracle(ctx, cfg, log),
		model:  factory.NewModel(cfg, log),
		trends: trendSvc,
		cache:  cache,
	}, nil
}

// buildRouter wires services into the HTTP routes.
func buildRouter(cfg *config.Config, log zerolog.Logger, d *deps, svcHealth api.HealthSource) *mux.Router {
	ledger := services.NewQuotaLedger(d.store, cfg.DefaultCredits)
	premium := services.NewPremiumService(d.oracle, d.store, log)
	wf := services.NewWorkflow(
		premium,
		ledger,
		hooks.NewGenerator(d.model, log),
		hooks.NewExpander(d.model, log),
		d.trends,
		log,
	)
	return api.NewRouter(api.Deps{
		Workflow:     wf,
		Premium:      premium,
		Ledger:       ledger,
		Health:       svcHealth,
		SubscribeURL: cfg.SubscribeURL,
	})
}

// startHealthCheckers runs the store checker, which gates health, and the
// chain and cache checkers, which are reported but never gate.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, d *deps) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(d.store, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	var informational []health.HealthChecker
	if cfg.SubscriptionContract != "" {
		chainChecker := health.NewPingChecker("chain", d.oracle, log, probeTimeout)
		go chainChecker.Start(ctx, interval)
		informational = append(informational, chainChecker)
	}
	if d.cache != nil {
		cacheChecker := health.NewPingChecker("trend_cache", d.cache, log, probeTimeout)
		go cacheChecker.Start(ctx, interval)
		informational = append(informational, cacheChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, storeChecker).WithInformational(informational...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	// Generation calls two upstreams in sequence; leave room past their timeout.
	write := 2*cfg.UpstreamTimeout() + 5*time.Second
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is interval*2 with a floor of 60 seconds.
func startupHealthTimeout(healthIntervalSeconds int) time.Duration {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		timeout = 60
	}
	return time.Duration(timeout) * time.Second
}

type healthReporter interface {
	IsHealthy() bool
}

// waitUntilHealthy blocks until the service reports healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth healthReporter) error {
	return waitFor(ctx, svcHealth, startupHealthTimeout(cfg.HealthIntervalSeconds), 250*time.Millisecond)
}

func waitFor(ctx context.Context, svcHealth healthReporter, timeout, tick time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a context cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
