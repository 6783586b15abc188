package store

import (
	"context"
	"testing"

	"market-sim-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreStockRoundTrip(t *testing.T) {
	s := NewMemoryStore(5)
	ctx := context.Background()

	id := s.AddStock(models.Stock{
		Symbol:   "ACME",
		Timeline: []models.StockPoint{{Date: 0, MarketValuation: 1000}},
	})

	require.NoError(t, s.AppendPoint(ctx, id, models.StockPoint{Date: 1, MarketValuation: 1100}))

	stock, err := s.GetStock(ctx, id)
	require.NoError(t, err)
	require.Len(t, stock.Timeline, 2)

	// Mutating the returned copy must not leak into the store.
	stock.Timeline[0].MarketValuation = 0
	again, err := s.GetStock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, again.Timeline[0].MarketValuation)
}

func TestMemoryStorePortfolioCloneSemantics(t *testing.T) {
	s := NewMemoryStore(5)
	ctx := context.Background()

	portfolio := &models.Portfolio{Balance: 500, Investments: []models.Investment{{StockID: 1, Quantity: 2}}}
	require.NoError(t, s.CreatePortfolio(ctx, portfolio))

	loaded, err := s.GetPortfolio(ctx, portfolio.ID)
	require.NoError(t, err)
	loaded.Balance = 999
	loaded.Investments[0].Quantity = 100

	fresh, err := s.GetPortfolio(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, fresh.Balance)
	assert.Equal(t, 2.0, fresh.Investments[0].Quantity)

	loaded.Balance = 600
	require.NoError(t, s.UpdatePortfolio(ctx, loaded))
	updated, err := s.GetPortfolio(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, 600.0, updated.Balance)
}

func TestMemoryStoreAnalyticsDerivation(t *testing.T) {
	s := NewMemoryStore(5)
	ctx := context.Background()

	rising := s.AddStock(models.Stock{
		Symbol: "UP",
		Timeline: []models.StockPoint{
			{Date: 0, MarketValuation: 1000},
			{Date: 1, MarketValuation: 1100},
		},
	})
	falling := s.AddStock(models.Stock{
		Symbol: "DOWN",
		Timeline: []models.StockPoint{
			{Date: 0, MarketValuation: 1000},
			{Date: 1, MarketValuation: 900},
		},
	})

	up, err := s.Analytics(ctx, rising)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, up.Price)
	assert.InDelta(t, 0.1, up.Slope, 1e-9)
	assert.InDelta(t, 0.1*1100/5, up.DividendRate, 1e-9)

	down, err := s.Analytics(ctx, falling)
	require.NoError(t, err)
	assert.Equal(t, 900.0, down.Price)
	assert.InDelta(t, -0.1, down.Slope, 1e-9)
	assert.Zero(t, down.DividendRate, "falling stocks pay no dividend")

	price, err := s.Price(ctx, rising)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, price)
}

func TestMemoryStorePullTrader(t *testing.T) {
	s := NewMemoryStore(5)
	ctx := context.Background()

	id := s.AddStock(models.Stock{
		Symbol:   "ACME",
		Timeline: []models.StockPoint{{Date: 0, MarketValuation: 1000}},
		Traders:  []uint{1, 2, 3},
	})

	require.NoError(t, s.PullTrader(ctx, id, 2))

	stock, err := s.GetStock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, stock.Traders)
}

func TestMemoryStoreBots(t *testing.T) {
	s := NewMemoryStore(5)
	ctx := context.Background()

	require.NoError(t, s.SaveBot(ctx, &models.Bot{PortfolioID: 1, TradePeriod: 1, Class: models.BotSafe}))
	require.NoError(t, s.SaveBot(ctx, &models.Bot{PortfolioID: 2, TradePeriod: 1, Class: models.BotRandom}))

	bots, err := s.BotsForPortfolio(ctx, 1)
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, models.BotSafe, bots[0].Class)
}
