package main

import (
	"fmt"
	"net/http"
	"os"

	"market-sim-go/internal/config"
	"market-sim-go/internal/database"
	"market-sim-go/internal/logger"
	"market-sim-go/internal/sim"
	"market-sim-go/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	marketStore := store.NewGormStore(db, cfg.Simulation.DividendFactor)

	// The settler doubles as the read-model for portfolio pages; the web
	// API never triggers settlements itself.
	applier := sim.NewApplier(marketStore, cfg.Simulation.MinimumBalance)
	settler := sim.NewSettler(marketStore, marketStore, applier, marketStore, sim.SettlementConfig{
		DumpThreshold:   cfg.Simulation.DumpThreshold,
		DateLimit:       cfg.Simulation.DateLimit,
		StartingBalance: cfg.Simulation.StartingBalance,
		LookupTimeout:   cfg.Simulation.LookupTimeout(),
		Workers:         cfg.Simulation.WorkerPoolSize,
	}, log.Named("settler"))

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, marketStore, settler)

	// API endpoints
	mux.HandleFunc("GET /api/stocks", apiHandler.StocksHandler)
	mux.HandleFunc("GET /api/stocks/{id}", apiHandler.StockHandler)
	mux.HandleFunc("GET /api/stocks/{id}/analytics", apiHandler.StockAnalyticsHandler)
	mux.HandleFunc("GET /api/portfolios/{id}", apiHandler.PortfolioHandler)
	mux.HandleFunc("GET /api/portfolios/{id}/transactions", apiHandler.TransactionsHandler)
	mux.HandleFunc("GET /api/portfolios/{id}/investments", apiHandler.InvestmentsHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
