package sim

import (
	"context"
	"fmt"
	"math/rand"

	"market-sim-go/internal/models"
	"go.uber.org/zap"
)

// ValuationEngine advances stock valuations one tick at a time on behalf of
// their owning agencies. Each agency's coefficients scale four sequential
// multiplicative adjustments: deterministic drift, symmetric random noise,
// market sentiment and the volume change ratio. The shared intensity
// constant tunes how hard all four terms bite.
type ValuationEngine struct {
	stocks    StockStore
	sentiment SentimentSource
	rng       *rand.Rand
	intensity float64
	locks     *lockRegistry
	logger    *zap.Logger
}

// NewValuationEngine creates a valuation engine.
func NewValuationEngine(stocks StockStore, sentiment SentimentSource, rng *rand.Rand, intensity float64, logger *zap.Logger) *ValuationEngine {
	return &ValuationEngine{
		stocks:    stocks,
		sentiment: sentiment,
		rng:       rng,
		intensity: intensity,
		locks:     newLockRegistry(),
		logger:    logger,
	}
}

// Evaluate advances the agency's stock timeline by exactly one point and
// returns the new market valuation. The stock must already carry at least
// one point; bootstrap valuation is the creator's concern.
func (e *ValuationEngine) Evaluate(ctx context.Context, agencyID uint) (float64, error) {
	agency, err := e.stocks.GetAgency(ctx, agencyID)
	if err != nil {
		return 0, fmt.Errorf("%w: agency %d: %v", ErrLookupFailure, agencyID, err)
	}

	// Serialize the read-modify-append per stock. The owning agency is
	// normally the single writer, but overlapping ticks must not interleave.
	unlock := e.locks.lock(agency.StockID)
	defer unlock()

	stock, err := e.stocks.GetStock(ctx, agency.StockID)
	if err != nil {
		return 0, fmt.Errorf("%w: stock %d: %v", ErrLookupFailure, agency.StockID, err)
	}

	latest, ok := stock.LatestPoint()
	if !ok {
		return 0, fmt.Errorf("%w: stock %d", ErrInsufficientHistory, stock.ID)
	}

	params := agency.Parameters
	valuation := latest.MarketValuation

	valuation *= 1 + e.intensity*params.SteadyIncrease

	valuation *= 1 + e.intensity*params.RandomFluctuation*(e.rng.Float64()-0.5)

	marketSentiment, err := e.sentiment.RelativeCumulativeNetWorth(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: market sentiment: %v", ErrLookupFailure, err)
	}
	valuation *= 1 + e.intensity*params.MarketSentimentDependence*marketSentiment

	valuation *= 1 + e.intensity*params.MarketVolumeDependence*volumeChangeRatio(stock.Timeline)

	point := models.StockPoint{
		Date:            len(stock.Timeline),
		MarketValuation: valuation,
		// Volume is owned by trading activity; the valuation engine only
		// carries the latest known value forward.
		VolumeInMarket: latest.VolumeInMarket,
	}
	if err := e.stocks.AppendPoint(ctx, stock.ID, point); err != nil {
		return 0, fmt.Errorf("could not append point for stock %d: %w", stock.ID, err)
	}

	e.logger.Debug("Stock evaluated",
		zap.Uint("stock_id", stock.ID),
		zap.Int("date", point.Date),
		zap.Float64("valuation", valuation))

	return valuation, nil
}

// volumeChangeRatio is the relative volume change across the two most
// recent points: zero without two points of history, one when the previous
// volume was zero (so a fresh inflow counts as full growth rather than a
// division by zero).
func volumeChangeRatio(timeline []models.StockPoint) float64 {
	if len(timeline) < 2 {
		return 0
	}
	current := timeline[len(timeline)-1].VolumeInMarket
	previous := timeline[len(timeline)-2].VolumeInMarket
	if previous == 0 {
		return 1
	}
	return (current - previous) / previous
}

// EvaluateAll runs one valuation tick for every agency. Per-agency failures
// are logged and skipped so one broken stock never stalls the market.
func (e *ValuationEngine) EvaluateAll(ctx context.Context) {
	agencies, err := e.stocks.ListAgencies(ctx)
	if err != nil {
		e.logger.Error("Could not list agencies for valuation tick", zap.Error(err))
		return
	}

	for _, agency := range agencies {
		if _, err := e.Evaluate(ctx, agency.ID); err != nil {
			e.logger.Warn("Skipping agency valuation",
				zap.Uint("agency_id", agency.ID),
				zap.Error(err))
		}
	}
}
