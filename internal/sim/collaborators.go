package sim

import (
	"context"

	"market-sim-go/internal/models"
)

// BasicInfo is the minimal price view of a stock.
type BasicInfo struct {
	StockID uint    `json:"stock_id"`
	Symbol  string  `json:"symbol"`
	Price   float64 `json:"price"`
}

// Analytics is the richer per-stock view used by the settlement cycle.
// Slope is the relative valuation change across the two most recent points;
// DividendRate is the per-share payout for the current tick.
type Analytics struct {
	StockID      uint    `json:"stock_id"`
	Price        float64 `json:"price"`
	DividendRate float64 `json:"dividend_rate"`
	Slope        float64 `json:"slope"`
}

// StockStore is the persistence contract for stocks and their agencies.
type StockStore interface {
	GetStock(ctx context.Context, id uint) (*models.Stock, error)
	AppendPoint(ctx context.Context, id uint, point models.StockPoint) error
	GetAgency(ctx context.Context, id uint) (*models.Agency, error)
	ListAgencies(ctx context.Context) ([]models.Agency, error)
}

// PortfolioStore is the persistence contract for portfolios.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, id uint) (*models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, p *models.Portfolio) error
	CreatePortfolio(ctx context.Context, p *models.Portfolio) error
	ListPortfolioIDs(ctx context.Context) ([]uint, error)
	// AllTimelines returns every portfolio's net-worth timeline, used by
	// the market sentiment aggregate.
	AllTimelines(ctx context.Context) ([][]models.NetWorthPoint, error)
}

// BotStore persists generated bots.
type BotStore interface {
	SaveBot(ctx context.Context, bot *models.Bot) error
	BotsForPortfolio(ctx context.Context, portfolioID uint) ([]models.Bot, error)
}

// PriceSource supplies the current price of a stock, read at transaction
// application time.
type PriceSource interface {
	Price(ctx context.Context, stockID uint) (float64, error)
}

// AnalyticsSource supplies price and dividend analytics for settlement.
type AnalyticsSource interface {
	PriceSource
	BasicInfo(ctx context.Context, stockID uint) (BasicInfo, error)
	Analytics(ctx context.Context, stockID uint) (Analytics, error)
}

// TraderRegistry tracks which portfolios hold which stocks. PullTrader is
// invoked when a holding is dumped during settlement.
type TraderRegistry interface {
	PullTrader(ctx context.Context, stockID, portfolioID uint) error
}

// SentimentSource supplies the market-wide trend scalar consumed by the
// valuation engine.
type SentimentSource interface {
	RelativeCumulativeNetWorth(ctx context.Context) (float64, error)
}
