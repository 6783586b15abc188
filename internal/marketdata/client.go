package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"market-sim-go/internal/config"
	"market-sim-go/internal/sim"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RestClient reads prices and stock analytics from a remote market-data
// HTTP API. It implements sim.AnalyticsSource so settlement can run against
// a market hosted elsewhere instead of the local store.
type RestClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ sim.AnalyticsSource = (*RestClient)(nil)

// NewRestClient creates a market-data REST client.
func NewRestClient(cfg *config.MarketData, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest handles the actual request execution with rate limiting and
// retry logic.
func (c *RestClient) doRequest(ctx context.Context, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+url))
		resp, err = req.SetContext(ctx).Execute(http.MethodGet, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Client-side errors other than rate limiting are not retryable.
		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode < 500 && statusCode != http.StatusTooManyRequests {
				return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
			}
		}

		// Exponential backoff: 1s, 2s, 4s
		retryAfter := time.Duration(math.Pow(2, float64(i))) * time.Second
		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// BasicInfo fetches the minimal price view of a stock.
func (c *RestClient) BasicInfo(ctx context.Context, stockID uint) (sim.BasicInfo, error) {
	var info sim.BasicInfo
	req := c.client.R().
		SetResult(&info).
		SetHeader("Content-Type", "application/json")

	if _, err := c.doRequest(ctx, fmt.Sprintf("/api/stocks/%d", stockID), req); err != nil {
		return sim.BasicInfo{}, fmt.Errorf("failed to get basic info for stock %d: %w", stockID, err)
	}
	return info, nil
}

// Analytics fetches the settlement-facing view of a stock.
func (c *RestClient) Analytics(ctx context.Context, stockID uint) (sim.Analytics, error) {
	var analytics sim.Analytics
	req := c.client.R().
		SetResult(&analytics).
		SetHeader("Content-Type", "application/json")

	if _, err := c.doRequest(ctx, fmt.Sprintf("/api/stocks/%d/analytics", stockID), req); err != nil {
		return sim.Analytics{}, fmt.Errorf("failed to get analytics for stock %d: %w", stockID, err)
	}
	return analytics, nil
}

// Price fetches the current price of a stock.
func (c *RestClient) Price(ctx context.Context, stockID uint) (float64, error) {
	info, err := c.BasicInfo(ctx, stockID)
	if err != nil {
		return 0, err
	}
	return info.Price, nil
}
