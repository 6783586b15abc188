package sim

import (
	"context"
	"fmt"
	"math/rand"

	"market-sim-go/internal/models"
	"go.uber.org/zap"
)

// classProfile holds the sampling constants for one bot class: the lower
// bound and jitter magnitude of each parameter plus the weight-vector
// lengths for the three bundle expansion modes.
type classProfile struct {
	balanceBase, balanceJitter     float64
	expansionBase, expansionJitter float64
	highBase, highJitter           float64
	lowsBase, lowsJitter           float64
	randomBase, randomJitter       float64
	highWeights, lowsWeights       int
	randomWeights                  int
	lossBase, lossJitter           float64
}

var classProfiles = map[models.BotClass]classProfile{
	models.BotSafe: {
		balanceBase: 0.3, balanceJitter: 0.1,
		expansionBase: 0.2, expansionJitter: 0.1,
		highBase: 0.3, highJitter: 0.1,
		lowsBase: 0.3, lowsJitter: 0.1,
		highWeights: 2, lowsWeights: 2, randomWeights: 2,
		lossBase: 0.1, lossJitter: 0.1,
	},
	models.BotAggressive: {
		balanceBase: 0.5, balanceJitter: 0.1,
		expansionBase: 0.4, expansionJitter: 0.1,
		highBase: 0.3, highJitter: 0.1,
		lowsBase: 0.3, lowsJitter: 0.1,
		highWeights: 4, lowsWeights: 4, randomWeights: 4,
		lossBase: 0.2, lossJitter: 0.1,
	},
	models.BotSpeculative: {
		balanceBase: 0.4, balanceJitter: 0.1,
		expansionBase: 0.2, expansionJitter: 0.1,
		highBase: 0.4, highJitter: 0.1,
		lowsBase: 0.4, lowsJitter: 0.1,
		randomBase: 0.2, randomJitter: 0.1,
		highWeights: 4, lowsWeights: 4, randomWeights: 4,
		lossBase: 0.15, lossJitter: 0.1,
	},
	models.BotRandom: {
		balanceBase: 0.5, balanceJitter: 0.1,
		expansionBase: 0.5, expansionJitter: 0.1,
		highWeights: 0, lowsWeights: 0, randomWeights: 5,
		lossBase: 0.3, lossJitter: 0.1,
	},
}

// BotGenerator builds complete strategy profiles for new bots. All
// randomness flows through the injected source so generation is
// reproducible under a fixed seed.
type BotGenerator struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewBotGenerator creates a bot generator using the given random source.
func NewBotGenerator(rng *rand.Rand, logger *zap.Logger) *BotGenerator {
	return &BotGenerator{rng: rng, logger: logger}
}

// Generate creates a bot for the given portfolio with a uniformly chosen
// class and a freshly sampled strategy profile.
func (g *BotGenerator) Generate(portfolioID uint, tradePeriod int) (*models.Bot, error) {
	class := models.BotClasses[g.rng.Intn(len(models.BotClasses))]
	return g.GenerateForClass(class, portfolioID, tradePeriod)
}

// GenerateForClass creates a bot of the given class. The class is validated
// so that externally supplied values cannot produce a half-built profile.
func (g *BotGenerator) GenerateForClass(class models.BotClass, portfolioID uint, tradePeriod int) (*models.Bot, error) {
	profile, ok := classProfiles[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBotClass, class)
	}

	jitter := func(base, magnitude float64) float64 {
		return base + g.rng.Float64()*magnitude
	}

	params := models.StrategyParameters{
		InvestmentAmountPerSlot: models.InvestmentAmountPerSlot{
			BalanceDependence: jitter(profile.balanceBase, profile.balanceJitter),
		},
		BundleExpansion: models.BundleExpansion{
			Parameter: jitter(profile.expansionBase, profile.expansionJitter),
			HighRaise: models.InvestmentParameters{
				Parameter:          jitter(profile.highBase, profile.highJitter),
				WeightDistribution: GenerateWeights(g.rng, profile.highWeights),
			},
			LowsRising: models.InvestmentParameters{
				Parameter:          jitter(profile.lowsBase, profile.lowsJitter),
				WeightDistribution: GenerateWeights(g.rng, profile.lowsWeights),
			},
			Random: models.InvestmentParameters{
				Parameter:          jitter(profile.randomBase, profile.randomJitter),
				WeightDistribution: GenerateWeights(g.rng, profile.randomWeights),
			},
		},
		LossAversion: jitter(profile.lossBase, profile.lossJitter),
	}

	// The Random class never samples targeted picks: the whole expansion
	// budget goes to the random mode.
	if class == models.BotRandom {
		params.BundleExpansion.HighRaise.Parameter = 0
		params.BundleExpansion.LowsRising.Parameter = 0
	}

	// Derived terms. Each split must sum to exactly one, so the last share
	// is never sampled independently.
	params.InvestmentAmountPerSlot.MarketSentimentDependence =
		1 - params.InvestmentAmountPerSlot.BalanceDependence
	params.BundleFilling = models.BundleFilling{
		Parameter:          1 - params.BundleExpansion.Parameter,
		WeightDistribution: []float64{},
	}
	params.BundleExpansion.Random.Parameter =
		1 - params.BundleExpansion.HighRaise.Parameter - params.BundleExpansion.LowsRising.Parameter

	return &models.Bot{
		PortfolioID: portfolioID,
		TradePeriod: tradePeriod,
		Class:       class,
		Parameters:  params,
	}, nil
}

// ProvisionBots generates and saves one bot for every portfolio that does
// not have one yet. It is invoked at provisioning time, outside the tick
// loop; existing bots are never regenerated.
func (g *BotGenerator) ProvisionBots(ctx context.Context, portfolios PortfolioStore, bots BotStore) error {
	ids, err := portfolios.ListPortfolioIDs(ctx)
	if err != nil {
		return fmt.Errorf("could not list portfolios for bot provisioning: %w", err)
	}

	for _, id := range ids {
		existing, err := bots.BotsForPortfolio(ctx, id)
		if err != nil {
			return fmt.Errorf("could not check bots for portfolio %d: %w", id, err)
		}
		if len(existing) > 0 {
			continue
		}

		bot, err := g.Generate(id, 1)
		if err != nil {
			return err
		}
		if err := bots.SaveBot(ctx, bot); err != nil {
			return fmt.Errorf("could not save bot for portfolio %d: %w", id, err)
		}
		g.logger.Info("Provisioned bot",
			zap.Uint("portfolio_id", id),
			zap.String("class", string(bot.Class)))
	}
	return nil
}
