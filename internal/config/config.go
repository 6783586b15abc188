package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Simulation Simulation `mapstructure:"simulation"`
	MarketData MarketData `mapstructure:"market_data"`
	Logger     Logger     `mapstructure:"logger"`
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
}

// Simulation holds the tunables of the market simulation core.
type Simulation struct {
	TickInterval      int     `mapstructure:"tick_interval"` // seconds
	IntensityConstant float64 `mapstructure:"intensity_constant"`
	DateLimit         int     `mapstructure:"date_limit"`
	DumpThreshold     float64 `mapstructure:"dump_threshold"`
	StartingBalance   float64 `mapstructure:"starting_balance"`
	MinimumBalance    float64 `mapstructure:"minimum_balance"`
	DividendFactor    float64 `mapstructure:"dividend_factor"`
	WorkerPoolSize    int     `mapstructure:"worker_pool_size"`
	LookupTimeoutMs   int     `mapstructure:"lookup_timeout_ms"`
	// Seed fixes every random draw for reproducible runs; zero means
	// seed from the wall clock.
	Seed int64 `mapstructure:"seed"`
	// Tickers lists the stock symbols seeded at migration, one agency each.
	Tickers   []string `mapstructure:"tickers"`
	BasePrice float64  `mapstructure:"base_price"`
}

// MarketData selects where settlement reads prices and analytics from:
// "local" derives them from the simulation's own store, "remote" queries
// the HTTP API of a market-data service.
type MarketData struct {
	Mode           string  `mapstructure:"mode"`
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the read-only web API.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LookupTimeout returns the per-investment lookup timeout as a duration.
func (s Simulation) LookupTimeout() time.Duration {
	return time.Duration(s.LookupTimeoutMs) * time.Millisecond
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("simulation.tick_interval", 5)
	viper.SetDefault("simulation.intensity_constant", 0.04)
	viper.SetDefault("simulation.date_limit", 20)
	viper.SetDefault("simulation.dump_threshold", 10)
	viper.SetDefault("simulation.starting_balance", 100000)
	viper.SetDefault("simulation.minimum_balance", 10000)
	viper.SetDefault("simulation.dividend_factor", 5)
	viper.SetDefault("simulation.worker_pool_size", 8)
	viper.SetDefault("simulation.lookup_timeout_ms", 2000)
	viper.SetDefault("simulation.base_price", 1000)
	viper.SetDefault("market_data.mode", "local")
	viper.SetDefault("market_data.rate_limit", 20)      // requests per second
	viper.SetDefault("market_data.rate_limit_burst", 5) // burst size
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
