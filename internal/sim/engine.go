package sim

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Engine is the tick driver: every interval it advances the simulation
// clock by one date, revalues every agency-backed stock and then settles
// every portfolio.
type Engine struct {
	logger     *zap.Logger
	valuation  *ValuationEngine
	settler    *Settler
	portfolios PortfolioStore
	interval   time.Duration
	date       int
}

// NewEngine creates a simulation engine ticking at the given interval.
func NewEngine(logger *zap.Logger, valuation *ValuationEngine, settler *Settler, portfolios PortfolioStore, interval time.Duration) *Engine {
	return &Engine{
		logger:     logger,
		valuation:  valuation,
		settler:    settler,
		portfolios: portfolios,
		interval:   interval,
	}
}

// Run starts the engine's main loop and blocks until the context is
// cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Initializing simulation engine...")
	if err := e.initialize(ctx); err != nil {
		e.logger.Fatal("Failed to initialize engine", zap.Error(err))
	}
	e.logger.Info("Engine initialized", zap.Int("resume_date", e.date))

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("Starting tick loop", zap.Duration("interval", e.interval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping simulation engine...")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// initialize resumes the simulation clock from the most recent net-worth
// point so restarts never rewind the date.
func (e *Engine) initialize(ctx context.Context) error {
	timelines, err := e.portfolios.AllTimelines(ctx)
	if err != nil {
		return err
	}
	for _, timeline := range timelines {
		if len(timeline) == 0 {
			continue
		}
		if latest := timeline[len(timeline)-1].Date; latest > e.date {
			e.date = latest
		}
	}
	return nil
}

// tick runs one full simulation step: valuation fan-out over all agencies,
// then settlement fan-out over all portfolios.
func (e *Engine) tick(ctx context.Context) {
	e.date++
	started := time.Now()
	e.logger.Info("Tick started", zap.Int("date", e.date))

	e.valuation.EvaluateAll(ctx)
	e.settler.SettleAll(ctx, e.date)

	e.logger.Info("Tick complete",
		zap.Int("date", e.date),
		zap.Duration("elapsed", time.Since(started)))
}

// Date returns the last completed tick date.
func (e *Engine) Date() int {
	return e.date
}
