package sim

import (
	"context"
	"fmt"

	"market-sim-go/internal/models"
)

// quantityEpsilon absorbs float drift when deciding whether a holding has
// been fully cleared by a sale.
const quantityEpsilon = 1e-9

// NewTransaction validates and builds a transaction record. Stock-backed
// variants require a stock reference; account-only variants must not carry
// one. Amounts must be non-negative.
func NewTransaction(txType models.TransactionType, stockID uint, amount float64, date int) (models.Transaction, error) {
	if !txType.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: %q", ErrInvalidTransactionType, txType)
	}
	if txType.StockBacked() && stockID == 0 {
		return models.Transaction{}, fmt.Errorf("%w: %s requires a stock reference", ErrInvalidTransactionType, txType)
	}
	if !txType.StockBacked() && stockID != 0 {
		return models.Transaction{}, fmt.Errorf("%w: %s must not reference a stock", ErrInvalidTransactionType, txType)
	}
	if amount < 0 {
		return models.Transaction{}, fmt.Errorf("%w: negative amount %f", ErrInvalidTransactionType, amount)
	}
	return models.Transaction{Type: txType, StockID: stockID, Amount: amount, Date: date}, nil
}

// Applier applies single transactions to a portfolio's balance and
// holdings. Prices are read at application time, not decision time; the
// caller decides persistence afterwards.
type Applier struct {
	prices     PriceSource
	minBalance float64
}

// NewApplier creates a transaction applier. minBalance is the configured
// floor a withdrawal may never drop the balance below.
func NewApplier(prices PriceSource, minBalance float64) *Applier {
	return &Applier{prices: prices, minBalance: minBalance}
}

// Apply mutates the portfolio in place according to the transaction
// variant. On success the transaction is appended to the portfolio's log;
// on error the portfolio is left untouched.
func (a *Applier) Apply(ctx context.Context, portfolio *models.Portfolio, tx models.Transaction) error {
	switch tx.Type {
	case models.TxStockPurchase:
		if err := a.buyStock(ctx, portfolio, tx); err != nil {
			return err
		}
	case models.TxStockSale:
		if err := a.sellStock(ctx, portfolio, tx); err != nil {
			return err
		}
	case models.TxStockDividend:
		portfolio.Balance += tx.Amount
	case models.TxDeposit:
		portfolio.Balance += tx.Amount
	case models.TxWithdrawal:
		if portfolio.Balance-tx.Amount < a.minBalance {
			return fmt.Errorf("%w: withdrawal of %.2f would drop balance below %.2f",
				ErrInsufficientFunds, tx.Amount, a.minBalance)
		}
		portfolio.Balance -= tx.Amount
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, tx.Type)
	}

	portfolio.Transactions = append(portfolio.Transactions, tx)
	return nil
}

func (a *Applier) buyStock(ctx context.Context, portfolio *models.Portfolio, tx models.Transaction) error {
	if tx.Amount > portfolio.Balance {
		return fmt.Errorf("%w: purchase of %.2f exceeds balance %.2f",
			ErrInsufficientFunds, tx.Amount, portfolio.Balance)
	}

	price, err := a.prices.Price(ctx, tx.StockID)
	if err != nil {
		return fmt.Errorf("%w: price for stock %d: %v", ErrLookupFailure, tx.StockID, err)
	}

	quantity := tx.Amount / price
	portfolio.Balance -= tx.Amount
	if i := portfolio.Investment(tx.StockID); i >= 0 {
		portfolio.Investments[i].Quantity += quantity
	} else {
		portfolio.Investments = append(portfolio.Investments, models.Investment{
			StockID:  tx.StockID,
			Quantity: quantity,
		})
	}
	return nil
}

func (a *Applier) sellStock(ctx context.Context, portfolio *models.Portfolio, tx models.Transaction) error {
	price, err := a.prices.Price(ctx, tx.StockID)
	if err != nil {
		return fmt.Errorf("%w: price for stock %d: %v", ErrLookupFailure, tx.StockID, err)
	}

	quantity := tx.Amount / price
	i := portfolio.Investment(tx.StockID)
	if i < 0 || portfolio.Investments[i].Quantity+quantityEpsilon < quantity {
		return fmt.Errorf("%w: sale of %.6f shares of stock %d", ErrInsufficientHolding, quantity, tx.StockID)
	}

	portfolio.Balance += tx.Amount
	portfolio.Investments[i].Quantity -= quantity
	if portfolio.Investments[i].Quantity <= quantityEpsilon {
		portfolio.Investments = append(portfolio.Investments[:i], portfolio.Investments[i+1:]...)
	}
	return nil
}
