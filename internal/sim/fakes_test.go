package sim

import (
	"context"
	"fmt"
	"sync"

	"market-sim-go/internal/models"
)

// fakeStockStore is an in-memory StockStore for engine tests.
type fakeStockStore struct {
	mu       sync.Mutex
	stocks   map[uint]*models.Stock
	agencies map[uint]*models.Agency
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{
		stocks:   make(map[uint]*models.Stock),
		agencies: make(map[uint]*models.Agency),
	}
}

func (f *fakeStockStore) GetStock(_ context.Context, id uint) (*models.Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stock, ok := f.stocks[id]
	if !ok {
		return nil, fmt.Errorf("stock %d not found", id)
	}
	copied := *stock
	copied.Timeline = append([]models.StockPoint(nil), stock.Timeline...)
	return &copied, nil
}

func (f *fakeStockStore) AppendPoint(_ context.Context, id uint, point models.StockPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stock, ok := f.stocks[id]
	if !ok {
		return fmt.Errorf("stock %d not found", id)
	}
	stock.Timeline = append(stock.Timeline, point)
	return nil
}

func (f *fakeStockStore) GetAgency(_ context.Context, id uint) (*models.Agency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agency, ok := f.agencies[id]
	if !ok {
		return nil, fmt.Errorf("agency %d not found", id)
	}
	copied := *agency
	return &copied, nil
}

func (f *fakeStockStore) ListAgencies(_ context.Context) ([]models.Agency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agencies := make([]models.Agency, 0, len(f.agencies))
	for _, agency := range f.agencies {
		agencies = append(agencies, *agency)
	}
	return agencies, nil
}

// fakePortfolioStore is an in-memory PortfolioStore with copy-on-read
// semantics, so unlocked concurrent settlements would lose updates.
type fakePortfolioStore struct {
	mu         sync.Mutex
	portfolios map[uint]*models.Portfolio
	nextID     uint
}

func newFakePortfolioStore() *fakePortfolioStore {
	return &fakePortfolioStore{portfolios: make(map[uint]*models.Portfolio)}
}

func clonePortfolio(p *models.Portfolio) *models.Portfolio {
	copied := *p
	copied.Investments = append([]models.Investment(nil), p.Investments...)
	copied.Transactions = append([]models.Transaction(nil), p.Transactions...)
	copied.Timeline = append([]models.NetWorthPoint(nil), p.Timeline...)
	return &copied
}

func (f *fakePortfolioStore) GetPortfolio(_ context.Context, id uint) (*models.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %d not found", id)
	}
	return clonePortfolio(p), nil
}

func (f *fakePortfolioStore) UpdatePortfolio(_ context.Context, p *models.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.portfolios[p.ID] = clonePortfolio(p)
	return nil
}

func (f *fakePortfolioStore) CreatePortfolio(_ context.Context, p *models.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.portfolios[p.ID] = clonePortfolio(p)
	return nil
}

func (f *fakePortfolioStore) ListPortfolioIDs(_ context.Context) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uint, 0, len(f.portfolios))
	for id := range f.portfolios {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakePortfolioStore) AllTimelines(_ context.Context) ([][]models.NetWorthPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	timelines := make([][]models.NetWorthPoint, 0, len(f.portfolios))
	for _, p := range f.portfolios {
		timelines = append(timelines, append([]models.NetWorthPoint(nil), p.Timeline...))
	}
	return timelines, nil
}

// fakeBotStore records saved bots.
type fakeBotStore struct {
	mu   sync.Mutex
	bots []models.Bot
}

func (f *fakeBotStore) SaveBot(_ context.Context, bot *models.Bot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	bot.ID = uint(len(f.bots) + 1)
	f.bots = append(f.bots, *bot)
	return nil
}

func (f *fakeBotStore) BotsForPortfolio(_ context.Context, portfolioID uint) ([]models.Bot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Bot
	for _, bot := range f.bots {
		if bot.PortfolioID == portfolioID {
			matched = append(matched, bot)
		}
	}
	return matched, nil
}

// fakeAnalytics serves canned analytics per stock; entries in fail return
// their error, entries in block wait until the lookup context expires.
type fakeAnalytics struct {
	mu        sync.Mutex
	analytics map[uint]Analytics
	fail      map[uint]error
	block     map[uint]bool
}

func newFakeAnalytics() *fakeAnalytics {
	return &fakeAnalytics{
		analytics: make(map[uint]Analytics),
		fail:      make(map[uint]error),
		block:     make(map[uint]bool),
	}
}

func (f *fakeAnalytics) Analytics(ctx context.Context, stockID uint) (Analytics, error) {
	f.mu.Lock()
	blocked := f.block[stockID]
	failErr := f.fail[stockID]
	analytics, ok := f.analytics[stockID]
	f.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return Analytics{}, ctx.Err()
	}
	if failErr != nil {
		return Analytics{}, failErr
	}
	if !ok {
		return Analytics{}, fmt.Errorf("stock %d not found", stockID)
	}
	return analytics, nil
}

func (f *fakeAnalytics) BasicInfo(ctx context.Context, stockID uint) (BasicInfo, error) {
	analytics, err := f.Analytics(ctx, stockID)
	if err != nil {
		return BasicInfo{}, err
	}
	return BasicInfo{StockID: stockID, Price: analytics.Price}, nil
}

func (f *fakeAnalytics) Price(ctx context.Context, stockID uint) (float64, error) {
	analytics, err := f.Analytics(ctx, stockID)
	if err != nil {
		return 0, err
	}
	return analytics.Price, nil
}

// fakeRegistry records PullTrader calls.
type fakeRegistry struct {
	mu     sync.Mutex
	pulled [][2]uint
}

func (f *fakeRegistry) PullTrader(_ context.Context, stockID, portfolioID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulled = append(f.pulled, [2]uint{stockID, portfolioID})
	return nil
}

// fixedSentiment returns a constant trend scalar.
type fixedSentiment struct {
	value float64
}

func (f fixedSentiment) RelativeCumulativeNetWorth(context.Context) (float64, error) {
	return f.value, nil
}
