package sim

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"market-sim-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngineTickAdvancesMarketAndPortfolios(t *testing.T) {
	stocks := valuationFixture(
		[]models.StockPoint{{Date: 0, MarketValuation: 1000}},
		models.ValuationParameters{},
	)
	portfolios := newFakePortfolioStore()
	require.NoError(t, portfolios.CreatePortfolio(context.Background(), &models.Portfolio{
		Balance:  100000,
		Timeline: []models.NetWorthPoint{{Value: 100000, Date: 0}},
	}))

	analytics := newFakeAnalytics()
	applier := NewApplier(analytics, 10000)
	sentiment := NewMarketSentiment(portfolios)
	valuation := NewValuationEngine(stocks, sentiment, rand.New(rand.NewSource(1)), 0.04, zap.NewNop())
	settler := NewSettler(portfolios, analytics, applier, &fakeRegistry{}, SettlementConfig{
		DumpThreshold: 10,
		DateLimit:     20,
		LookupTimeout: time.Second,
		Workers:       2,
	}, zap.NewNop())

	engine := NewEngine(zap.NewNop(), valuation, settler, portfolios, time.Second)
	ctx := context.Background()

	require.NoError(t, engine.initialize(ctx))
	assert.Equal(t, 0, engine.Date(), "clock resumes from the latest timeline point")

	engine.tick(ctx)
	engine.tick(ctx)

	assert.Equal(t, 2, engine.Date())

	stock, err := stocks.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, stock.Timeline, 3, "one valuation point per tick")

	timelines, err := portfolios.AllTimelines(ctx)
	require.NoError(t, err)
	require.Len(t, timelines, 1)
	assert.Len(t, timelines[0], 3, "one net-worth point per tick")
	assert.Equal(t, 2, timelines[0][2].Date)
}

func TestEngineResumesClockFromTimelines(t *testing.T) {
	portfolios := newFakePortfolioStore()
	require.NoError(t, portfolios.CreatePortfolio(context.Background(), &models.Portfolio{
		Timeline: []models.NetWorthPoint{{Value: 1, Date: 7}},
	}))
	require.NoError(t, portfolios.CreatePortfolio(context.Background(), &models.Portfolio{
		Timeline: []models.NetWorthPoint{{Value: 1, Date: 3}},
	}))

	engine := NewEngine(zap.NewNop(), nil, nil, portfolios, time.Second)
	require.NoError(t, engine.initialize(context.Background()))
	assert.Equal(t, 7, engine.Date())
}
