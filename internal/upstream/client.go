package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Client is the REST-plus-streaming capability set (spec §4.A). Neither
// vendor adapter implements it: FlowVendor has RESTCall but no Subscribe
// methods, TickVendor has none of the three, and the only WebSocket session
// is the tick vendor's trade feed run through internal/upstream/stream.
type Client interface {
	RESTCall(ctx context.Context, path string, params map[string]string) (json.RawMessage, error)
	SubscribeTrades(ctx context.Context, tickers []string, handler func(json.RawMessage)) error
	SubscribeOffLit(ctx context.Context, tickers []string, handler func(json.RawMessage)) error
}

// RESTClient is a bearer-token JSON REST client shared by both vendor
// adapters: sliding-window rate limited, circuit-breaker wrapped, with the
// spec's 429 and generic-error handling policy.
type RESTClient struct {
	name        string
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	limiter     *SlidingWindowLimiter
	breaker     *gobreaker.CircuitBreaker
}

// NewRESTClient builds a rate-limited, circuit-breaker-wrapped REST client.
// requestsPerMinute should be the internal cap (spec: 100, vendor ceiling ~120).
func NewRESTClient(name, baseURL, bearerToken string, requestsPerMinute int) *RESTClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(bname string, from, to gobreaker.State) {
			log.Warn().Str("vendor", bname).Str("from", from.String()).Str("to", to.String()).
				Msg("upstream circuit breaker state change")
		},
	}

	return &RESTClient{
		name:        name,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		limiter:     NewSlidingWindowLimiter(requestsPerMinute),
		breaker:     gobreaker.NewCircuitBreaker(settings),
	}
}

// Get performs one rate-limited, circuit-breaker-guarded GET, honoring the
// spec's 429 retry-once and generic-error-returns-nil policy (§4.A, §7).
//
// On a persistent failure this returns (nil, nil): callers treat nil as
// "no data", never as an error, per spec §4.A / §7 class 1-2.
func (c *RESTClient) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doGet(ctx, path, params)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			log.Warn().Str("vendor", c.name).Str("path", path).Msg("circuit open, skipping upstream call")
			return nil, nil
		}
		log.Warn().Err(err).Str("vendor", c.name).Str("path", path).Msg("upstream call failed, treating as no data")
		return nil, nil
	}
	return result.(json.RawMessage), nil
}

func (c *RESTClient) doGet(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		sleep := parseResetHint(resp.Header.Get("x-uw-req-per-minute-reset"))
		log.Warn().Str("vendor", c.name).Dur("sleep", sleep).Msg("429 rate limited, honoring reset hint")
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		resp2, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		defer resp2.Body.Close()
		if resp2.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("retry after 429 still failed: %d", resp2.StatusCode)
		}
		return io.ReadAll(resp2.Body)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parseResetHint clamps the vendor reset hint to [2s, 30s] per spec §4.A.
func parseResetHint(raw string) time.Duration {
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		secs = 2
	}
	d := time.Duration(secs * float64(time.Second))
	if d < 2*time.Second {
		d = 2 * time.Second
	}
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
