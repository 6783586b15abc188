package sim

import (
	"context"
	"fmt"
)

// MarketSentiment aggregates every portfolio's net-worth timeline into the
// single trend scalar the valuation engine consumes: the relative change of
// the market-wide cumulative net worth between the two most recent ticks.
// Positive means the market grew, negative means it shrank, zero means
// there is not enough history to tell.
type MarketSentiment struct {
	portfolios PortfolioStore
}

// NewMarketSentiment creates a sentiment aggregate over the given store.
func NewMarketSentiment(portfolios PortfolioStore) *MarketSentiment {
	return &MarketSentiment{portfolios: portfolios}
}

// RelativeCumulativeNetWorth implements SentimentSource.
func (m *MarketSentiment) RelativeCumulativeNetWorth(ctx context.Context) (float64, error) {
	timelines, err := m.portfolios.AllTimelines(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not load portfolio timelines: %w", err)
	}

	var current, previous float64
	for _, timeline := range timelines {
		if len(timeline) == 0 {
			continue
		}
		latest := timeline[len(timeline)-1].Value
		current += latest
		if len(timeline) >= 2 {
			previous += timeline[len(timeline)-2].Value
		} else {
			// A portfolio with a single point contributes no trend of
			// its own, only mass.
			previous += latest
		}
	}

	if previous == 0 {
		return 0, nil
	}
	return (current - previous) / previous, nil
}
