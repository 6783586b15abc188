package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-sim-go/internal/config"
	"market-sim-go/internal/database"
	"market-sim-go/internal/logger"
	"market-sim-go/internal/marketdata"
	"market-sim-go/internal/sim"
	"market-sim-go/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database and stores
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")
	marketStore := store.NewGormStore(db, cfg.Simulation.DividendFactor)

	// A single seeded source makes an entire run reproducible.
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.Info("Random source initialized", zap.Int64("seed", seed))

	// Settlement reads prices either from the local store or from a remote
	// market-data API, selected by config.
	var analytics sim.AnalyticsSource = marketStore
	if cfg.MarketData.Mode == "remote" {
		analytics = marketdata.NewRestClient(&cfg.MarketData, log.Named("marketdata"))
		log.Info("Using remote market data API", zap.String("base_url", cfg.MarketData.BaseURL))
	}

	sentiment := sim.NewMarketSentiment(marketStore)
	valuation := sim.NewValuationEngine(marketStore, sentiment, rng, cfg.Simulation.IntensityConstant, log.Named("valuation"))
	applier := sim.NewApplier(analytics, cfg.Simulation.MinimumBalance)
	settler := sim.NewSettler(marketStore, analytics, applier, marketStore, sim.SettlementConfig{
		DumpThreshold:   cfg.Simulation.DumpThreshold,
		DateLimit:       cfg.Simulation.DateLimit,
		StartingBalance: cfg.Simulation.StartingBalance,
		LookupTimeout:   cfg.Simulation.LookupTimeout(),
		Workers:         cfg.Simulation.WorkerPoolSize,
	}, log.Named("settler"))

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Give every portfolio a trading bot before the first tick.
	botGen := sim.NewBotGenerator(rng, log.Named("botgen"))
	if err := botGen.ProvisionBots(ctx, marketStore, marketStore); err != nil {
		log.Fatal("Failed to provision bots", zap.Error(err))
	}

	// Initialize and run the simulation engine
	interval := time.Duration(cfg.Simulation.TickInterval) * time.Second
	engine := sim.NewEngine(log.Named("engine"), valuation, settler, marketStore, interval)
	engine.Run(ctx)

	log.Info("Simulator has been shut down.")
}
