package database

import (
	"errors"
	"fmt"

	"market-sim-go/internal/config"
	"market-sim-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates the schema and seeds one stock plus its owning agency
// per configured ticker. Seeding writes the bootstrap valuation point the
// valuation engine requires before its first tick.
func AutoMigrate(db *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(&models.Stock{}, &models.Agency{}, &models.Portfolio{}, &models.Bot{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for _, ticker := range cfg.Simulation.Tickers {
		var stock models.Stock
		err := db.Where(&models.Stock{Symbol: ticker}).First(&stock).Error
		if err == nil {
			continue // already seeded
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up stock '%s': %w", ticker, err)
		}

		stock = models.Stock{
			Symbol: ticker,
			Name:   ticker,
			Timeline: []models.StockPoint{
				{Date: 0, MarketValuation: cfg.Simulation.BasePrice, VolumeInMarket: 0},
			},
			Traders: []uint{},
		}
		if err := db.Create(&stock).Error; err != nil {
			return fmt.Errorf("failed to seed stock '%s': %w", ticker, err)
		}

		agency := models.Agency{
			Name:    ticker,
			StockID: stock.ID,
			Parameters: models.ValuationParameters{
				SteadyIncrease:            0.5,
				RandomFluctuation:         0.5,
				MarketSentimentDependence: 0.5,
				MarketVolumeDependence:    0.5,
			},
		}
		if err := db.Create(&agency).Error; err != nil {
			return fmt.Errorf("failed to seed agency '%s': %w", ticker, err)
		}
	}

	return nil
}
