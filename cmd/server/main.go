// Command server hosts the query dispatch API: config is read from the
// environment, stores are durable (postgres/redis) or in-memory by config,
// and providers are real vendor clients or deterministic mocks by config.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/teddybearwork/pickme/internal/confirm"
	"github.com/teddybearwork/pickme/internal/credits"
	"github.com/teddybearwork/pickme/internal/dispatch"
	dispatchmetrics "github.com/teddybearwork/pickme/internal/dispatch/metrics"
	"github.com/teddybearwork/pickme/internal/jwtauth"
	"github.com/teddybearwork/pickme/internal/officer"
	"github.com/teddybearwork/pickme/internal/platform/config"
	"github.com/teddybearwork/pickme/internal/platform/httpserver"
	"github.com/teddybearwork/pickme/internal/platform/logger"
	platformredis "github.com/teddybearwork/pickme/internal/platform/redis"
	"github.com/teddybearwork/pickme/internal/provider"
	"github.com/teddybearwork/pickme/internal/provider/mockprovider"
	"github.com/teddybearwork/pickme/internal/provider/osint"
	"github.com/teddybearwork/pickme/internal/provider/signzy"
	"github.com/teddybearwork/pickme/internal/provider/surepass"
	"github.com/teddybearwork/pickme/internal/query"
	"github.com/teddybearwork/pickme/internal/query/classifier"
	rlmetrics "github.com/teddybearwork/pickme/internal/ratelimit/metrics"
	rlservice "github.com/teddybearwork/pickme/internal/ratelimit/service"
	"github.com/teddybearwork/pickme/internal/ratelimit/store/window"
	"github.com/teddybearwork/pickme/internal/request"
	httptransport "github.com/teddybearwork/pickme/internal/transport/http"
	auditpublisher "github.com/teddybearwork/pickme/pkg/platform/audit/publisher"
	auditmemory "github.com/teddybearwork/pickme/pkg/platform/audit/store/memory"
)

const confirmCleanupInterval = time.Minute

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when a DSN is configured, in-memory otherwise.
	var (
		officers officer.Store
		txStore  credits.Store
		results  request.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		officers = officer.NewPostgresStore(db)
		txStore = credits.NewPostgresStore(db)
		results = request.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		officers = officer.NewInMemoryStore()
		txStore = credits.NewInMemoryStore()
		results = request.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	// Rate-limit counters: redis when configured, in-memory otherwise.
	var windowStore rlservice.WindowStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		windowStore = window.NewRedisStore(redisClient.Client)
		log.Info("using redis rate-limit counters")
	} else {
		windowStore = window.NewInMemoryStore()
	}

	auditPublisher := auditpublisher.NewPublisher(auditmemory.NewInMemoryStore())

	ledger, err := credits.New(officers, txStore,
		credits.WithLogger(log),
		credits.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	limiter, err := rlservice.New(windowStore,
		rlservice.WithLogger(log),
		rlservice.WithMetrics(rlmetrics.New()),
	)
	if err != nil {
		return err
	}

	confirms := confirm.NewInMemoryStore()
	go func() {
		if err := confirms.StartCleanup(ctx, confirmCleanupInterval); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("confirmation cleanup stopped", "error", err)
		}
	}()

	routing, err := buildRouting(cfg.Providers, log)
	if err != nil {
		return err
	}

	dispatcher, err := dispatch.New(
		officers, classifier.New(), limiter, ledger, confirms, routing, results,
		dispatch.WithLogger(log),
		dispatch.WithMetrics(dispatchmetrics.New()),
		dispatch.WithAuditPublisher(auditPublisher),
		dispatch.WithConfirmationTTL(cfg.ConfirmationTTL),
		dispatch.WithProviderTimeout(cfg.Providers.Timeout),
	)
	if err != nil {
		return err
	}

	jwtService, err := jwtauth.NewService(cfg.JWTSigningKey)
	if err != nil {
		return err
	}

	handler, err := httptransport.New(dispatcher, ledger, officers, results, log)
	if err != nil {
		return err
	}
	router := httptransport.NewRouter(handler, jwtService, cfg.AdminToken, log)

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// buildRouting maps query kinds to providers in priority order. The first
// provider per kind is mandatory for a full success.
func buildRouting(cfg config.ProviderConfig, log *slog.Logger) (provider.Routing, error) {
	if cfg.UseMocks {
		osintMock := mockprovider.New("osint", 0)
		return provider.Routing{
			Free: map[query.Kind][]provider.Provider{
				query.KindPhone:    {osintMock},
				query.KindEmail:    {osintMock},
				query.KindUsername: {osintMock},
				query.KindGeneral:  {osintMock},
			},
			Paid: map[query.Kind][]provider.Provider{
				query.KindPhone:          {mockprovider.New("signzy", 2)},
				query.KindAadhaar:        {mockprovider.New("surepass", 3)},
				query.KindPAN:            {mockprovider.New("surepass", 2)},
				query.KindDrivingLicense: {mockprovider.New("surepass", 1)},
			},
		}, nil
	}

	collector, err := osint.New(osint.DefaultSources(), osint.WithLogger(log))
	if err != nil {
		return provider.Routing{}, err
	}
	routing := provider.Routing{
		Free: map[query.Kind][]provider.Provider{
			query.KindPhone:    {collector},
			query.KindEmail:    {collector},
			query.KindUsername: {collector},
			query.KindGeneral:  {collector},
		},
		Paid: map[query.Kind][]provider.Provider{},
	}

	if cfg.SignzyAPIKey != "" {
		client, err := signzy.New(cfg.SignzyBaseURL, cfg.SignzyAPIKey)
		if err != nil {
			return provider.Routing{}, err
		}
		routing.Paid[query.KindPhone] = []provider.Provider{client}
	} else {
		log.Warn("signzy API key not set; paid phone lookups will fail")
	}

	if cfg.SurepassAPIKey != "" {
		client, err := surepass.New(cfg.SurepassBaseURL, cfg.SurepassAPIKey)
		if err != nil {
			return provider.Routing{}, err
		}
		routing.Paid[query.KindAadhaar] = []provider.Provider{client}
		routing.Paid[query.KindPAN] = []provider.Provider{client}
		routing.Paid[query.KindDrivingLicense] = []provider.Provider{client}
	} else {
		log.Warn("surepass API key not set; paid document lookups will fail")
	}

	return routing, nil
}
