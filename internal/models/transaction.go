package models

// TransactionType discriminates the closed set of transaction variants.
type TransactionType string

const (
	TxWithdrawal    TransactionType = "WITHDRAWAL"
	TxDeposit       TransactionType = "DEPOSIT"
	TxStockPurchase TransactionType = "STOCK_PURCHASE"
	TxStockSale     TransactionType = "STOCK_SALE"
	TxStockDividend TransactionType = "STOCK_DIVIDEND"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TxWithdrawal, TxDeposit, TxStockPurchase, TxStockSale, TxStockDividend:
		return true
	}
	return false
}

// StockBacked reports whether the variant carries a stock reference.
func (t TransactionType) StockBacked() bool {
	switch t {
	case TxStockPurchase, TxStockSale, TxStockDividend:
		return true
	}
	return false
}

// Transaction is an immutable record of a single balance movement.
// StockID is zero for the account-only variants. Amounts are always in
// currency, never in shares; share quantities are derived from the stock's
// price at application time.
type Transaction struct {
	Type    TransactionType `json:"type"`
	StockID uint            `json:"stock_id,omitempty"`
	Amount  float64         `json:"amount"`
	Date    int             `json:"date"`
}
