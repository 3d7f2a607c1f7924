// Package satellite fetches measured vegetation indices from the upstream
// imagery API. Calls ride behind a circuit breaker with bounded retries; the
// caller falls back to synthesis on any failure, so errors here never reach a
// user.
package satellite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/observability"
)

// backoffConfig controls the retry schedule for upstream calls. The breaker
// opens on sustained failure, so retries stay short.
type backoffConfig struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

var defaultBackoff = backoffConfig{
	maxRetries:      3,
	initialInterval: 500 * time.Millisecond,
	maxInterval:     5 * time.Second,
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Client implements domain.VegetationSource against the indices API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoff    backoffConfig
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a satellite indices client. apiKey may be empty for
// unauthenticated deployments.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "satellite",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		backoff: defaultBackoff,
		circuit: cb,
		metrics: metrics,
		logger:  logger,
	}
}

// Indices fetches the vegetation indices for a location.
func (c *Client) Indices(ctx context.Context, location string) (domain.VegetationIndices, error) {
	params := url.Values{"location": {location}}
	fullURL := fmt.Sprintf("%s/v1/indices?%s", c.baseURL, params.Encode())

	start := time.Now()
	resp, err := c.doResilientRequest(ctx, fullURL)
	c.metrics.SatelliteAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.SatelliteRequests.WithLabelValues("error").Inc()
		return domain.VegetationIndices{}, err
	}
	defer resp.Body.Close()

	var payload indicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.SatelliteRequests.WithLabelValues("error").Inc()
		return domain.VegetationIndices{}, fmt.Errorf("decode indices response: %w", err)
	}

	c.metrics.SatelliteRequests.WithLabelValues("success").Inc()
	return domain.VegetationIndices{
		NDVIMean:   payload.NDVIMean,
		NDVIStdDev: payload.NDVIStd,
		NDVIMin:    payload.NDVIMin,
		NDVIMax:    payload.NDVIMax,
		EVIMean:    payload.EVIMean,
	}, nil
}

// doResilientRequest executes the GET with retries, exponential backoff, and
// the circuit breaker. An open breaker fails fast without burning retries.
func (c *Client) doResilientRequest(ctx context.Context, fullURL string) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})

		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.backoff.maxRetries {
			return nil, lastErr
		}

		delay := c.backoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.backoff.maxInterval {
			delay = c.backoff.maxInterval
		}

		c.logger.Debug("satellite request retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// indicesResponse is the upstream wire shape.
type indicesResponse struct {
	NDVIMean float64 `json:"ndvi_mean"`
	NDVIStd  float64 `json:"ndvi_std"`
	NDVIMin  float64 `json:"ndvi_min"`
	NDVIMax  float64 `json:"ndvi_max"`
	EVIMean  float64 `json:"evi_mean"`
}
