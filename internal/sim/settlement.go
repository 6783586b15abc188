package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"market-sim-go/internal/models"
	"go.uber.org/zap"
)

// transactionsPageSize is the page length served by the transaction and
// investment listing endpoints.
const transactionsPageSize = 8

// SettlementConfig carries the tunables of the settlement cycle.
type SettlementConfig struct {
	// DumpThreshold is the holding value below which a position is
	// force-liquidated.
	DumpThreshold float64
	// DateLimit is the history window: transactions and timeline points
	// dated at or before date-DateLimit are dropped on settlement.
	DateLimit int
	// StartingBalance seeds new portfolios.
	StartingBalance float64
	// LookupTimeout bounds each per-investment analytics lookup.
	LookupTimeout time.Duration
	// Workers bounds the number of portfolios settled concurrently.
	Workers int
}

// Settler runs the per-tick settlement cycle: it revalues a portfolio's
// holdings, decides dump-vs-dividend per holding, applies the resulting
// transactions, trims the history windows and appends a fresh net-worth
// point. At most one settlement is in flight per portfolio at any time.
type Settler struct {
	portfolios PortfolioStore
	analytics  AnalyticsSource
	applier    *Applier
	registry   TraderRegistry
	cfg        SettlementConfig
	locks      *lockRegistry
	logger     *zap.Logger
}

// NewSettler creates a settlement cycle runner.
func NewSettler(portfolios PortfolioStore, analytics AnalyticsSource, applier *Applier, registry TraderRegistry, cfg SettlementConfig, logger *zap.Logger) *Settler {
	return &Settler{
		portfolios: portfolios,
		analytics:  analytics,
		applier:    applier,
		registry:   registry,
		cfg:        cfg,
		locks:      newLockRegistry(),
		logger:     logger,
	}
}

// revaluation is the per-investment result of the analytics fan-out. A
// failed lookup carries its error and excludes the holding from this tick.
type revaluation struct {
	investment models.Investment
	analytics  Analytics
	err        error
}

// Settle runs one settlement cycle for a portfolio and returns the freshly
// appended net-worth point.
func (s *Settler) Settle(ctx context.Context, portfolioID uint, date int) (models.NetWorthPoint, error) {
	unlock := s.locks.lock(portfolioID)
	defer unlock()

	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return models.NetWorthPoint{}, fmt.Errorf("%w: portfolio %d: %v", ErrLookupFailure, portfolioID, err)
	}

	results := s.revalueInvestments(ctx, portfolio.Investments)

	prices := make(map[uint]float64, len(results))
	dumped := make(map[uint]bool)
	var transactions []models.Transaction

	for _, res := range results {
		if res.err != nil {
			s.logger.Warn("Excluding investment from settlement",
				zap.Uint("portfolio_id", portfolioID),
				zap.Uint("stock_id", res.investment.StockID),
				zap.Error(res.err))
			continue
		}

		prices[res.investment.StockID] = res.analytics.Price
		value := res.investment.Quantity * res.analytics.Price

		if value < s.cfg.DumpThreshold {
			if err := s.registry.PullTrader(ctx, res.investment.StockID, portfolioID); err != nil {
				s.logger.Warn("Could not deregister dumped trader",
					zap.Uint("stock_id", res.investment.StockID),
					zap.Error(err))
			}
			dumped[res.investment.StockID] = true
			tx, err := NewTransaction(models.TxStockSale, res.investment.StockID, value, date)
			if err != nil {
				return models.NetWorthPoint{}, err
			}
			transactions = append(transactions, tx)
		} else {
			tx, err := NewTransaction(models.TxStockDividend, res.investment.StockID, res.investment.Quantity*res.analytics.DividendRate, date)
			if err != nil {
				return models.NetWorthPoint{}, err
			}
			transactions = append(transactions, tx)
		}
	}

	// Apply in emission order so the log stays auditable even though the
	// balance arithmetic would commute.
	for _, tx := range transactions {
		if err := s.applier.Apply(ctx, portfolio, tx); err != nil {
			s.logger.Error("Could not apply settlement transaction",
				zap.Uint("portfolio_id", portfolioID),
				zap.String("type", string(tx.Type)),
				zap.Float64("amount", tx.Amount),
				zap.Error(err))
		}
	}

	cutoff := date - s.cfg.DateLimit
	portfolio.Transactions = filterTransactions(portfolio.Transactions, cutoff)
	portfolio.Timeline = filterTimeline(portfolio.Timeline, cutoff)
	sort.Slice(portfolio.Timeline, func(i, j int) bool {
		return portfolio.Timeline[i].Date < portfolio.Timeline[j].Date
	})

	var kept []models.Investment
	holdingsValue := 0.0
	for _, inv := range portfolio.Investments {
		if dumped[inv.StockID] {
			continue
		}
		kept = append(kept, inv)
		price, ok := prices[inv.StockID]
		if !ok {
			// Lookup failed this tick; the holding stays but cannot
			// contribute a value until the next successful revaluation.
			continue
		}
		holdingsValue += inv.Quantity * price
	}
	portfolio.Investments = kept

	point := models.NetWorthPoint{Value: portfolio.Balance + holdingsValue, Date: date}
	portfolio.Timeline = append(portfolio.Timeline, point)

	if err := s.portfolios.UpdatePortfolio(ctx, portfolio); err != nil {
		return models.NetWorthPoint{}, fmt.Errorf("could not persist portfolio %d: %w", portfolioID, err)
	}

	return point, nil
}

// revalueInvestments fans out one analytics lookup per investment, each
// bounded by the configured timeout. Results are collected per item so a
// single failure never cancels its siblings; ordering follows completion.
func (s *Settler) revalueInvestments(ctx context.Context, investments []models.Investment) []revaluation {
	var wg sync.WaitGroup
	out := make(chan revaluation, len(investments))

	for _, inv := range investments {
		wg.Add(1)
		go func(inv models.Investment) {
			defer wg.Done()
			lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
			defer cancel()

			analytics, err := s.analytics.Analytics(lookupCtx, inv.StockID)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = fmt.Errorf("%w: stock %d", ErrLookupTimeout, inv.StockID)
				} else if !errors.Is(err, ErrLookupFailure) {
					err = fmt.Errorf("%w: stock %d: %v", ErrLookupFailure, inv.StockID, err)
				}
				out <- revaluation{investment: inv, err: err}
				return
			}
			out <- revaluation{investment: inv, analytics: analytics}
		}(inv)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]revaluation, 0, len(investments))
	for res := range out {
		results = append(results, res)
	}
	return results
}

// SettleAll settles every portfolio for the given date through a bounded
// worker pool. Per-portfolio failures are logged and skipped.
func (s *Settler) SettleAll(ctx context.Context, date int) {
	ids, err := s.portfolios.ListPortfolioIDs(ctx)
	if err != nil {
		s.logger.Error("Could not list portfolios for settlement", zap.Error(err))
		return
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(id uint) {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := s.Settle(ctx, id, date); err != nil {
				s.logger.Warn("Skipping portfolio settlement",
					zap.Uint("portfolio_id", id),
					zap.Error(err))
			}
		}(id)
	}
	wg.Wait()
}

// Liquidate sells every holding of a portfolio at the current price.
func (s *Settler) Liquidate(ctx context.Context, portfolioID uint, date int) error {
	unlock := s.locks.lock(portfolioID)
	defer unlock()

	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return fmt.Errorf("%w: portfolio %d: %v", ErrLookupFailure, portfolioID, err)
	}

	results := s.revalueInvestments(ctx, portfolio.Investments)
	for _, res := range results {
		if res.err != nil {
			s.logger.Warn("Could not liquidate investment",
				zap.Uint("stock_id", res.investment.StockID),
				zap.Error(res.err))
			continue
		}
		tx, err := NewTransaction(models.TxStockSale, res.investment.StockID, res.investment.Quantity*res.analytics.Price, date)
		if err != nil {
			return err
		}
		if err := s.applier.Apply(ctx, portfolio, tx); err != nil {
			return err
		}
	}

	return s.portfolios.UpdatePortfolio(ctx, portfolio)
}

// CreatePortfolio opens a new portfolio seeded with the starting balance
// and a matching net-worth point at date zero.
func (s *Settler) CreatePortfolio(ctx context.Context, user models.User) (*models.Portfolio, error) {
	portfolio := &models.Portfolio{
		User:         user,
		Balance:      s.cfg.StartingBalance,
		Investments:  []models.Investment{},
		Transactions: []models.Transaction{},
		Timeline: []models.NetWorthPoint{
			{Value: s.cfg.StartingBalance, Date: 0},
		},
	}
	if err := s.portfolios.CreatePortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("could not create portfolio: %w", err)
	}
	return portfolio, nil
}

// InvestmentView is one row of the investment listing: a holding enriched
// with its current price, value and projected change.
type InvestmentView struct {
	StockID  uint    `json:"stock_id"`
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
	Change   float64 `json:"change"`
}

// InvestmentsPage returns one page of a portfolio's holdings, ordered by
// ascending quantity and enriched through the analytics source.
func (s *Settler) InvestmentsPage(ctx context.Context, portfolioID uint, page int) ([]InvestmentView, error) {
	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("%w: portfolio %d: %v", ErrLookupFailure, portfolioID, err)
	}

	investments := make([]models.Investment, len(portfolio.Investments))
	copy(investments, portfolio.Investments)
	sort.Slice(investments, func(i, j int) bool {
		return investments[i].Quantity < investments[j].Quantity
	})
	investments = pageOf(investments, page)

	views := make([]InvestmentView, 0, len(investments))
	for _, inv := range investments {
		analytics, err := s.analytics.Analytics(ctx, inv.StockID)
		if err != nil {
			return nil, fmt.Errorf("%w: stock %d: %v", ErrLookupFailure, inv.StockID, err)
		}
		views = append(views, InvestmentView{
			StockID:  inv.StockID,
			Quantity: inv.Quantity,
			Amount:   inv.Quantity * analytics.Price,
			Change:   analytics.Slope * analytics.Price * inv.Quantity,
		})
	}
	return views, nil
}

// TransactionsPage returns one page of a portfolio's transaction log,
// newest first.
func (s *Settler) TransactionsPage(ctx context.Context, portfolioID uint, page int) ([]models.Transaction, error) {
	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("%w: portfolio %d: %v", ErrLookupFailure, portfolioID, err)
	}

	transactions := make([]models.Transaction, len(portfolio.Transactions))
	copy(transactions, portfolio.Transactions)
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date > transactions[j].Date
	})
	return pageOf(transactions, page), nil
}

func pageOf[T any](items []T, page int) []T {
	start := page * transactionsPageSize
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + transactionsPageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func filterTransactions(transactions []models.Transaction, cutoff int) []models.Transaction {
	kept := transactions[:0]
	for _, tx := range transactions {
		if tx.Date > cutoff {
			kept = append(kept, tx)
		}
	}
	return kept
}

func filterTimeline(timeline []models.NetWorthPoint, cutoff int) []models.NetWorthPoint {
	kept := timeline[:0]
	for _, point := range timeline {
		if point.Date > cutoff {
			kept = append(kept, point)
		}
	}
	return kept
}
