package store

import (
	"context"
	"fmt"
	"sync"

	"market-sim-go/internal/models"
	"market-sim-go/internal/sim"
)

// MemoryStore is a mutex-guarded in-memory implementation of every store
// contract the simulation consumes. It backs tests and dry runs; the gorm
// store is the durable twin.
type MemoryStore struct {
	mu             sync.RWMutex
	stocks         map[uint]*models.Stock
	agencies       map[uint]*models.Agency
	portfolios     map[uint]*models.Portfolio
	bots           []models.Bot
	nextStockID    uint
	nextAgencyID   uint
	nextPortfolio  uint
	dividendFactor float64
}

var (
	_ sim.StockStore      = (*MemoryStore)(nil)
	_ sim.PortfolioStore  = (*MemoryStore)(nil)
	_ sim.BotStore        = (*MemoryStore)(nil)
	_ sim.AnalyticsSource = (*MemoryStore)(nil)
	_ sim.TraderRegistry  = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(dividendFactor float64) *MemoryStore {
	return &MemoryStore{
		stocks:         make(map[uint]*models.Stock),
		agencies:       make(map[uint]*models.Agency),
		portfolios:     make(map[uint]*models.Portfolio),
		dividendFactor: dividendFactor,
	}
}

// AddStock registers a stock and returns its assigned ID.
func (s *MemoryStore) AddStock(stock models.Stock) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStockID++
	stock.ID = s.nextStockID
	s.stocks[stock.ID] = &stock
	return stock.ID
}

// AddAgency registers an agency and returns its assigned ID.
func (s *MemoryStore) AddAgency(agency models.Agency) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAgencyID++
	agency.ID = s.nextAgencyID
	s.agencies[agency.ID] = &agency
	return agency.ID
}

func (s *MemoryStore) GetStock(_ context.Context, id uint) (*models.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stock, ok := s.stocks[id]
	if !ok {
		return nil, fmt.Errorf("stock %d not found", id)
	}
	return cloneStock(stock), nil
}

func (s *MemoryStore) AppendPoint(_ context.Context, id uint, point models.StockPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock, ok := s.stocks[id]
	if !ok {
		return fmt.Errorf("stock %d not found", id)
	}
	stock.Timeline = append(stock.Timeline, point)
	return nil
}

func (s *MemoryStore) GetAgency(_ context.Context, id uint) (*models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agency, ok := s.agencies[id]
	if !ok {
		return nil, fmt.Errorf("agency %d not found", id)
	}
	copied := *agency
	return &copied, nil
}

func (s *MemoryStore) ListAgencies(_ context.Context) ([]models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agencies := make([]models.Agency, 0, len(s.agencies))
	for _, agency := range s.agencies {
		agencies = append(agencies, *agency)
	}
	return agencies, nil
}

func (s *MemoryStore) GetPortfolio(_ context.Context, id uint) (*models.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	portfolio, ok := s.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %d not found", id)
	}
	return clonePortfolio(portfolio), nil
}

func (s *MemoryStore) UpdatePortfolio(_ context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.portfolios[p.ID]; !ok {
		return fmt.Errorf("portfolio %d not found", p.ID)
	}
	s.portfolios[p.ID] = clonePortfolio(p)
	return nil
}

func (s *MemoryStore) CreatePortfolio(_ context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPortfolio++
	p.ID = s.nextPortfolio
	s.portfolios[p.ID] = clonePortfolio(p)
	return nil
}

func (s *MemoryStore) ListPortfolioIDs(_ context.Context) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint, 0, len(s.portfolios))
	for id := range s.portfolios {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) AllTimelines(_ context.Context) ([][]models.NetWorthPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	timelines := make([][]models.NetWorthPoint, 0, len(s.portfolios))
	for _, portfolio := range s.portfolios {
		timeline := make([]models.NetWorthPoint, len(portfolio.Timeline))
		copy(timeline, portfolio.Timeline)
		timelines = append(timelines, timeline)
	}
	return timelines, nil
}

func (s *MemoryStore) SaveBot(_ context.Context, bot *models.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bot.ID = uint(len(s.bots) + 1)
	s.bots = append(s.bots, *bot)
	return nil
}

func (s *MemoryStore) BotsForPortfolio(_ context.Context, portfolioID uint) ([]models.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Bot
	for _, bot := range s.bots {
		if bot.PortfolioID == portfolioID {
			matched = append(matched, bot)
		}
	}
	return matched, nil
}

func (s *MemoryStore) Price(ctx context.Context, stockID uint) (float64, error) {
	info, err := s.BasicInfo(ctx, stockID)
	if err != nil {
		return 0, err
	}
	return info.Price, nil
}

func (s *MemoryStore) BasicInfo(_ context.Context, stockID uint) (sim.BasicInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stock, ok := s.stocks[stockID]
	if !ok {
		return sim.BasicInfo{}, fmt.Errorf("stock %d not found", stockID)
	}
	latest, ok := stock.LatestPoint()
	if !ok {
		return sim.BasicInfo{}, fmt.Errorf("stock %d has no timeline", stockID)
	}
	return sim.BasicInfo{StockID: stockID, Symbol: stock.Symbol, Price: latest.MarketValuation}, nil
}

func (s *MemoryStore) Analytics(_ context.Context, stockID uint) (sim.Analytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stock, ok := s.stocks[stockID]
	if !ok {
		return sim.Analytics{}, fmt.Errorf("stock %d not found", stockID)
	}
	return deriveAnalytics(stock, s.dividendFactor)
}

func (s *MemoryStore) PullTrader(_ context.Context, stockID, portfolioID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock, ok := s.stocks[stockID]
	if !ok {
		return fmt.Errorf("stock %d not found", stockID)
	}
	kept := stock.Traders[:0]
	for _, id := range stock.Traders {
		if id != portfolioID {
			kept = append(kept, id)
		}
	}
	stock.Traders = kept
	return nil
}

func cloneStock(stock *models.Stock) *models.Stock {
	copied := *stock
	copied.Timeline = make([]models.StockPoint, len(stock.Timeline))
	copy(copied.Timeline, stock.Timeline)
	copied.Traders = make([]uint, len(stock.Traders))
	copy(copied.Traders, stock.Traders)
	return &copied
}

func clonePortfolio(p *models.Portfolio) *models.Portfolio {
	copied := *p
	copied.Investments = make([]models.Investment, len(p.Investments))
	copy(copied.Investments, p.Investments)
	copied.Transactions = make([]models.Transaction, len(p.Transactions))
	copy(copied.Transactions, p.Transactions)
	copied.Timeline = make([]models.NetWorthPoint, len(p.Timeline))
	copy(copied.Timeline, p.Timeline)
	return &copied
}
