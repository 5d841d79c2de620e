package common

import (
	"context"
	"net/http"
	"time"

	"github.com/bitrise-io/pr-review-bot/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryConfig holds the configuration for HTTP retry logic
type RetryConfig struct {
	// Maximum number of retries
	RetryMax int
	// Minimum time to wait between retries
	RetryWaitMin time.Duration
	// Maximum time to wait between retries
	RetryWaitMax time.Duration
	// Function to determine if a request should be retried
	CheckRetry retryablehttp.CheckRetry
}

// DefaultRetryConfig returns a RetryConfig with sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		RetryMax:     3,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 5 * time.Second,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
	}
}

// RetryConfigFromSettings builds a RetryConfig from the retry section of the settings
func RetryConfigFromSettings(s RetrySettings) RetryConfig {
	config := DefaultRetryConfig()
	if s.Max >= 0 {
		config.RetryMax = s.Max
	}
	if s.WaitMin > 0 {
		config.RetryWaitMin = time.Duration(s.WaitMin) * time.Second
	}
	if s.WaitMax > 0 {
		config.RetryWaitMax = time.Duration(s.WaitMax) * time.Second
	}
	if config.RetryWaitMax < config.RetryWaitMin {
		config.RetryWaitMax = config.RetryWaitMin
	}
	return config
}

// WriteSafeRetryPolicy behaves like retryablehttp.DefaultRetryPolicy for reads,
// but only retries writes that were rejected with 429, so a write the server
// may have applied is never sent twice.
func WriteSafeRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && resp.Request != nil {
		switch resp.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return resp.StatusCode == http.StatusTooManyRequests, nil
		}
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// NewRetryableClient creates a new HTTP client with retry capabilities.
// Once retries are exhausted the last response is handed back to the caller
// so API clients can build their regular error from it.
func NewRetryableClient(config RetryConfig) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()

	// Apply configuration
	retryClient.RetryMax = config.RetryMax
	retryClient.RetryWaitMin = config.RetryWaitMin
	retryClient.RetryWaitMax = config.RetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	logger.Debugf("Created retryable client with max retries: %d, min wait: %s, max wait: %s",
		config.RetryMax, config.RetryWaitMin, config.RetryWaitMax)

	// Only set CheckRetry if provided (non-nil)
	if config.CheckRetry != nil {
		retryClient.CheckRetry = config.CheckRetry
	}

	// Add logging for retries
	retryClient.Logger = &zapRetryLogger{}

	return retryClient
}

// zapRetryLogger adapts our zap logger to the interface required by retryablehttp
type zapRetryLogger struct{}

func (z *zapRetryLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.Errorw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debugw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.Debugw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.Warnw(msg, keysAndValues...)
}
