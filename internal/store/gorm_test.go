package store

import (
	"context"
	"fmt"
	"testing"

	"market-sim-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	// A named shared-cache DSN keeps every pooled connection on the same
	// in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Stock{}, &models.Agency{}, &models.Portfolio{}, &models.Bot{}))
	return NewGormStore(db, 5)
}

func TestGormStoreStockRoundTrip(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	stock := models.Stock{
		Symbol:   "ACME",
		Name:     "ACME",
		Timeline: []models.StockPoint{{Date: 0, MarketValuation: 1000}},
		Traders:  []uint{1, 2},
	}
	require.NoError(t, s.db.Create(&stock).Error)

	require.NoError(t, s.AppendPoint(ctx, stock.ID, models.StockPoint{Date: 1, MarketValuation: 1050, VolumeInMarket: 10}))

	loaded, err := s.GetStock(ctx, stock.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Timeline, 2)
	assert.Equal(t, 1050.0, loaded.Timeline[1].MarketValuation)

	info, err := s.BasicInfo(ctx, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", info.Symbol)
	assert.Equal(t, 1050.0, info.Price)

	analytics, err := s.Analytics(ctx, stock.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, analytics.Slope, 1e-9)

	require.NoError(t, s.PullTrader(ctx, stock.ID, 1))
	loaded, err = s.GetStock(ctx, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, loaded.Traders)
}

func TestGormStoreAgencies(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	agency := models.Agency{
		Name:    "ACME",
		StockID: 1,
		Parameters: models.ValuationParameters{
			SteadyIncrease:    0.5,
			RandomFluctuation: 0.3,
		},
	}
	require.NoError(t, s.db.Create(&agency).Error)

	loaded, err := s.GetAgency(ctx, agency.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.5, loaded.Parameters.SteadyIncrease)

	agencies, err := s.ListAgencies(ctx)
	require.NoError(t, err)
	assert.Len(t, agencies, 1)
}

func TestGormStorePortfolioRoundTrip(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	portfolio := &models.Portfolio{
		User:         models.User{Name: "ada"},
		Balance:      100000,
		Investments:  []models.Investment{{StockID: 1, Quantity: 4}},
		Transactions: []models.Transaction{{Type: models.TxDeposit, Amount: 100, Date: 1}},
		Timeline:     []models.NetWorthPoint{{Value: 100000, Date: 0}},
	}
	require.NoError(t, s.CreatePortfolio(ctx, portfolio))
	require.NotZero(t, portfolio.ID)

	loaded, err := s.GetPortfolio(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", loaded.User.Name)
	require.Len(t, loaded.Investments, 1)
	assert.Equal(t, 4.0, loaded.Investments[0].Quantity)

	loaded.Balance = 99000
	loaded.Timeline = append(loaded.Timeline, models.NetWorthPoint{Value: 99000, Date: 1})
	require.NoError(t, s.UpdatePortfolio(ctx, loaded))

	updated, err := s.GetPortfolio(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, 99000.0, updated.Balance)
	assert.Len(t, updated.Timeline, 2)

	ids, err := s.ListPortfolioIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{portfolio.ID}, ids)

	timelines, err := s.AllTimelines(ctx)
	require.NoError(t, err)
	require.Len(t, timelines, 1)
	assert.Len(t, timelines[0], 2)
}

func TestGormStoreBots(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	bot := &models.Bot{
		PortfolioID: 3,
		TradePeriod: 1,
		Class:       models.BotSpeculative,
		Parameters: models.StrategyParameters{
			LossAversion: 0.2,
			BundleFilling: models.BundleFilling{
				Parameter:          0.7,
				WeightDistribution: []float64{},
			},
		},
	}
	require.NoError(t, s.SaveBot(ctx, bot))

	bots, err := s.BotsForPortfolio(ctx, 3)
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, models.BotSpeculative, bots[0].Class)
	assert.Equal(t, 0.2, bots[0].Parameters.LossAversion)
	assert.Equal(t, 0.7, bots[0].Parameters.BundleFilling.Parameter)
}
