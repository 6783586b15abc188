package models

import "gorm.io/gorm"

// StockPoint is a single entry on a stock's valuation timeline.
// Date is the simulation tick at which the point was recorded.
type StockPoint struct {
	Date            int     `json:"date"`
	MarketValuation float64 `json:"market_valuation"`
	VolumeInMarket  float64 `json:"volume_in_market"`
}

// Stock represents a tradable stock and its full valuation history.
// The timeline is append-only and ordered by date.
type Stock struct {
	gorm.Model
	Symbol   string       `gorm:"uniqueIndex"`
	Name     string       `json:"name"`
	Timeline []StockPoint `gorm:"serializer:json"`
	// Traders holds the portfolio IDs currently invested in this stock.
	Traders []uint `gorm:"serializer:json"`
}

// LatestPoint returns the most recent timeline point, or false if the
// timeline is empty.
func (s *Stock) LatestPoint() (StockPoint, bool) {
	if len(s.Timeline) == 0 {
		return StockPoint{}, false
	}
	return s.Timeline[len(s.Timeline)-1], true
}
