package store

import (
	"fmt"

	"market-sim-go/internal/models"
	"market-sim-go/internal/sim"
)

// deriveAnalytics computes the settlement-facing view of a stock from its
// timeline: the latest valuation as price, the relative change across the
// two most recent points as slope, and a dividend proportional to positive
// growth. Falling stocks pay no dividend.
func deriveAnalytics(stock *models.Stock, dividendFactor float64) (sim.Analytics, error) {
	latest, ok := stock.LatestPoint()
	if !ok {
		return sim.Analytics{}, fmt.Errorf("stock %d has no timeline", stock.ID)
	}

	slope := 0.0
	if n := len(stock.Timeline); n >= 2 {
		previous := stock.Timeline[n-2].MarketValuation
		if previous != 0 {
			slope = (latest.MarketValuation - previous) / previous
		}
	}

	dividend := 0.0
	if slope > 0 && dividendFactor > 0 {
		dividend = slope * latest.MarketValuation / dividendFactor
	}

	return sim.Analytics{
		StockID:      stock.ID,
		Price:        latest.MarketValuation,
		DividendRate: dividend,
		Slope:        slope,
	}, nil
}
