package models

import "gorm.io/gorm"

// ValuationParameters are the per-agency influence coefficients applied to
// its stock's valuation on every tick. Each is typically in [0,1].
type ValuationParameters struct {
	SteadyIncrease            float64 `json:"steady_increase"`
	RandomFluctuation         float64 `json:"random_fluctuation"`
	MarketSentimentDependence float64 `json:"market_sentiment_dependence_parameter"`
	MarketVolumeDependence    float64 `json:"market_volume_dependence_parameter"`
}

// Agency is the issuer entity that drives exactly one stock's valuation.
type Agency struct {
	gorm.Model
	Name       string
	StockID    uint                `gorm:"uniqueIndex"`
	Parameters ValuationParameters `gorm:"embedded;embeddedPrefix:param_"`
}
