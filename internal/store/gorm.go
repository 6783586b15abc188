package store

import (
	"context"
	"fmt"

	"market-sim-go/internal/models"
	"market-sim-go/internal/sim"
	"gorm.io/gorm"
)

// GormStore persists the simulation state through gorm. Timelines, holdings
// and transaction logs live as JSON columns on their owner row, mirroring
// the document shape the simulation works with.
type GormStore struct {
	db             *gorm.DB
	dividendFactor float64
}

var (
	_ sim.StockStore      = (*GormStore)(nil)
	_ sim.PortfolioStore  = (*GormStore)(nil)
	_ sim.BotStore        = (*GormStore)(nil)
	_ sim.AnalyticsSource = (*GormStore)(nil)
	_ sim.TraderRegistry  = (*GormStore)(nil)
)

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB, dividendFactor float64) *GormStore {
	return &GormStore{db: db, dividendFactor: dividendFactor}
}

func (s *GormStore) GetStock(ctx context.Context, id uint) (*models.Stock, error) {
	var stock models.Stock
	if err := s.db.WithContext(ctx).First(&stock, id).Error; err != nil {
		return nil, fmt.Errorf("could not load stock %d: %w", id, err)
	}
	return &stock, nil
}

func (s *GormStore) AppendPoint(ctx context.Context, id uint, point models.StockPoint) error {
	stock, err := s.GetStock(ctx, id)
	if err != nil {
		return err
	}
	stock.Timeline = append(stock.Timeline, point)
	if err := s.db.WithContext(ctx).Save(stock).Error; err != nil {
		return fmt.Errorf("could not append point to stock %d: %w", id, err)
	}
	return nil
}

// ListStocks returns every stock, used by the read-only web API.
func (s *GormStore) ListStocks(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := s.db.WithContext(ctx).Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("could not list stocks: %w", err)
	}
	return stocks, nil
}

func (s *GormStore) GetAgency(ctx context.Context, id uint) (*models.Agency, error) {
	var agency models.Agency
	if err := s.db.WithContext(ctx).First(&agency, id).Error; err != nil {
		return nil, fmt.Errorf("could not load agency %d: %w", id, err)
	}
	return &agency, nil
}

func (s *GormStore) ListAgencies(ctx context.Context) ([]models.Agency, error) {
	var agencies []models.Agency
	if err := s.db.WithContext(ctx).Find(&agencies).Error; err != nil {
		return nil, fmt.Errorf("could not list agencies: %w", err)
	}
	return agencies, nil
}

func (s *GormStore) GetPortfolio(ctx context.Context, id uint) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := s.db.WithContext(ctx).First(&portfolio, id).Error; err != nil {
		return nil, fmt.Errorf("could not load portfolio %d: %w", id, err)
	}
	return &portfolio, nil
}

func (s *GormStore) UpdatePortfolio(ctx context.Context, p *models.Portfolio) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("could not update portfolio %d: %w", p.ID, err)
	}
	return nil
}

func (s *GormStore) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("could not create portfolio: %w", err)
	}
	return nil
}

func (s *GormStore) ListPortfolioIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Portfolio{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("could not list portfolio ids: %w", err)
	}
	return ids, nil
}

func (s *GormStore) AllTimelines(ctx context.Context) ([][]models.NetWorthPoint, error) {
	var portfolios []models.Portfolio
	if err := s.db.WithContext(ctx).Select("id", "timeline").Find(&portfolios).Error; err != nil {
		return nil, fmt.Errorf("could not load portfolio timelines: %w", err)
	}
	timelines := make([][]models.NetWorthPoint, 0, len(portfolios))
	for _, portfolio := range portfolios {
		timelines = append(timelines, portfolio.Timeline)
	}
	return timelines, nil
}

func (s *GormStore) SaveBot(ctx context.Context, bot *models.Bot) error {
	if err := s.db.WithContext(ctx).Create(bot).Error; err != nil {
		return fmt.Errorf("could not save bot: %w", err)
	}
	return nil
}

func (s *GormStore) BotsForPortfolio(ctx context.Context, portfolioID uint) ([]models.Bot, error) {
	var bots []models.Bot
	if err := s.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Find(&bots).Error; err != nil {
		return nil, fmt.Errorf("could not load bots for portfolio %d: %w", portfolioID, err)
	}
	return bots, nil
}

func (s *GormStore) Price(ctx context.Context, stockID uint) (float64, error) {
	info, err := s.BasicInfo(ctx, stockID)
	if err != nil {
		return 0, err
	}
	return info.Price, nil
}

func (s *GormStore) BasicInfo(ctx context.Context, stockID uint) (sim.BasicInfo, error) {
	stock, err := s.GetStock(ctx, stockID)
	if err != nil {
		return sim.BasicInfo{}, err
	}
	latest, ok := stock.LatestPoint()
	if !ok {
		return sim.BasicInfo{}, fmt.Errorf("stock %d has no timeline", stockID)
	}
	return sim.BasicInfo{StockID: stockID, Symbol: stock.Symbol, Price: latest.MarketValuation}, nil
}

func (s *GormStore) Analytics(ctx context.Context, stockID uint) (sim.Analytics, error) {
	stock, err := s.GetStock(ctx, stockID)
	if err != nil {
		return sim.Analytics{}, err
	}
	return deriveAnalytics(stock, s.dividendFactor)
}

func (s *GormStore) PullTrader(ctx context.Context, stockID, portfolioID uint) error {
	stock, err := s.GetStock(ctx, stockID)
	if err != nil {
		return err
	}
	kept := stock.Traders[:0]
	for _, id := range stock.Traders {
		if id != portfolioID {
			kept = append(kept, id)
		}
	}
	stock.Traders = kept
	if err := s.db.WithContext(ctx).Save(stock).Error; err != nil {
		return fmt.Errorf("could not update traders for stock %d: %w", stockID, err)
	}
	return nil
}
