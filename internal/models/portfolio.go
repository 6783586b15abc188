package models

import "gorm.io/gorm"

// Investment is one holding inside a portfolio. A portfolio keeps at most
// one entry per stock; repeated purchases merge into the same entry and the
// entry is removed when the quantity reaches zero.
type Investment struct {
	StockID  uint    `json:"stock_id"`
	Quantity float64 `json:"quantity"`
}

// NetWorthPoint is one entry on a portfolio's net-worth timeline.
type NetWorthPoint struct {
	Value float64 `json:"value"`
	Date  int     `json:"date"`
}

// User is the optional profile attached to a portfolio.
type User struct {
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

// Portfolio is an investor account: cash balance, holdings, an append-only
// transaction log and a windowed net-worth timeline.
type Portfolio struct {
	gorm.Model
	User         User            `gorm:"embedded;embeddedPrefix:user_"`
	Balance      float64         `gorm:"not null"`
	Investments  []Investment    `gorm:"serializer:json"`
	Transactions []Transaction   `gorm:"serializer:json"`
	Timeline     []NetWorthPoint `gorm:"serializer:json"`
}

// Investment returns the index of the holding for the given stock, or -1.
func (p *Portfolio) Investment(stockID uint) int {
	for i, inv := range p.Investments {
		if inv.StockID == stockID {
			return i
		}
	}
	return -1
}

// LatestNetWorth returns the most recent timeline point, or false if the
// timeline is empty.
func (p *Portfolio) LatestNetWorth() (NetWorthPoint, bool) {
	if len(p.Timeline) == 0 {
		return NetWorthPoint{}, false
	}
	return p.Timeline[len(p.Timeline)-1], true
}
