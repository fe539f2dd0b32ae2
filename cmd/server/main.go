package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/simaogato/riskparity-backend/internal/adapter/httpapi"
	"github.com/simaogato/riskparity-backend/internal/adapter/marketdata"
	"github.com/simaogato/riskparity-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/riskparity-backend/internal/cache"
	"github.com/simaogato/riskparity-backend/internal/config"
	"github.com/simaogato/riskparity-backend/internal/scheduler"
	"github.com/simaogato/riskparity-backend/internal/usecase/basket"
	"github.com/simaogato/riskparity-backend/internal/usecase/ingest"
	"github.com/simaogato/riskparity-backend/internal/usecase/performance"
	"github.com/simaogato/riskparity-backend/internal/usecase/rebalance"
	"github.com/simaogato/riskparity-backend/internal/usecase/retirement"
	"github.com/simaogato/riskparity-backend/internal/usecase/seeder"
	"github.com/simaogato/riskparity-backend/internal/usecase/trading"
	"github.com/simaogato/riskparity-backend/internal/usecase/valuation"
)

// refreshJob adapts the price refresh service to the scheduler's Job
// interface
type refreshJob struct {
	service *ingest.RefreshService
}

func (j *refreshJob) Name() string { return "price-refresh" }

func (j *refreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	_, err := j.service.RefreshAll(ctx)
	return err
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	db, err := postgres.NewDB(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	instrumentRepo := postgres.NewInstrumentRepository(db)
	priceRepo := postgres.NewPriceHistoryRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	basketRepo := postgres.NewBasketRepository(db)
	portfolioRepo := postgres.NewPortfolioRepository(db)
	fundRepo := postgres.NewFundRepository(db)
	retirementRepo := postgres.NewRetirementRepository(db)

	resultCache, err := cache.New(int64(cfg.CacheSize), time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	// Services
	valuationService := valuation.NewValuationService(transactionRepo, priceRepo, portfolioRepo, fundRepo, log)
	tradingService := trading.NewTradingService(transactionRepo, instrumentRepo, portfolioRepo, fundRepo, log)
	basketService := basket.NewBasketService(basketRepo, instrumentRepo, log)
	performanceService := performance.NewPerformanceService(basketRepo, priceRepo, instrumentRepo, resultCache, log)
	rebalanceService := rebalance.NewRebalanceService(basketRepo, transactionRepo, portfolioRepo, fundRepo, instrumentRepo, priceRepo, log)
	retirementService := retirement.NewSimulationService(retirementRepo, log)

	provider := marketdata.NewRouter(log)
	refreshService := ingest.NewRefreshService(instrumentRepo, priceRepo, provider, log)

	ctx := context.Background()
	if err := seeder.NewCatalogSeeder(instrumentRepo).Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed instrument catalog")
	}
	log.Info().Msg("Instrument catalog seeded")

	// Background price refresh
	sched := scheduler.New(log)
	if cfg.Refresh.Enabled {
		if err := sched.AddJob(cfg.Refresh.Schedule, &refreshJob{service: refreshService}); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Refresh.Schedule).Msg("Failed to register refresh job")
		}
		sched.Start()
		defer sched.Stop()
	}

	api := &httpapi.Server{
		Valuation:   valuationService,
		Trading:     tradingService,
		Baskets:     basketService,
		Performance: performanceService,
		Rebalance:   rebalanceService,
		Retirement:  retirementService,
		Refresh:     refreshService,
		Instruments: instrumentRepo,
		Scheduler:   sched,
		APIToken:    cfg.APIToken,
		Log:         log,
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	waitForShutdown(server, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("HTTP server stopped")
}
