package models

import "gorm.io/gorm"

// BotClass is the behavioral archetype of a trading bot. It decides the
// base ranges every strategy parameter is sampled from.
type BotClass string

const (
	BotSafe        BotClass = "Safe"
	BotAggressive  BotClass = "Aggressive"
	BotSpeculative BotClass = "Speculative"
	BotRandom      BotClass = "Random"
)

// BotClasses lists every known class, in selection order.
var BotClasses = []BotClass{BotSafe, BotAggressive, BotSpeculative, BotRandom}

// Valid reports whether c is one of the known bot classes.
func (c BotClass) Valid() bool {
	for _, known := range BotClasses {
		if c == known {
			return true
		}
	}
	return false
}

// InvestmentParameters weight one way of choosing stocks inside the bundle
// expansion: a share of the expansion budget plus a normalized,
// descending-sorted weight vector splitting it across picks.
type InvestmentParameters struct {
	Parameter          float64   `json:"parameter"`
	WeightDistribution []float64 `json:"weight_distribution"`
}

// InvestmentAmountPerSlot decides how much a bot commits per trade slot.
// The two parameters always sum to one.
type InvestmentAmountPerSlot struct {
	BalanceDependence         float64 `json:"balance_dependence_parameter"`
	MarketSentimentDependence float64 `json:"market_sentiment_dependence_parameter"`
}

// BundleExpansion splits the budget spent on opening new positions across
// three stock-picking modes. The three sub-parameters sum to one.
type BundleExpansion struct {
	Parameter  float64              `json:"parameter"`
	HighRaise  InvestmentParameters `json:"high_raise_investment_parameters"`
	LowsRising InvestmentParameters `json:"lows_rising_investment_parameters"`
	Random     InvestmentParameters `json:"random_investment_parameters"`
}

// BundleFilling is the budget spent topping up existing positions. Its
// parameter is always one minus the bundle expansion parameter.
type BundleFilling struct {
	Parameter          float64   `json:"parameter"`
	WeightDistribution []float64 `json:"weight_distribution"`
}

// StrategyParameters is the complete, immutable strategy profile generated
// once when a bot is created.
type StrategyParameters struct {
	InvestmentAmountPerSlot InvestmentAmountPerSlot `json:"investment_amount_per_slot"`
	BundleExpansion         BundleExpansion         `json:"bundle_expansion"`
	BundleFilling           BundleFilling           `json:"bundle_filling"`
	LossAversion            float64                 `json:"loss_aversion_parameter"`
}

// Bot is an automated trading agent bound to one portfolio. Its strategy
// parameters never change after creation; re-generation creates a new bot.
type Bot struct {
	gorm.Model
	PortfolioID uint `gorm:"index"`
	TradePeriod int  `gorm:"not null"`
	Class       BotClass
	Parameters  StrategyParameters `gorm:"serializer:json"`
}
