package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
	"github.com/andrescamacho/helmsman/internal/domain/shared"
)

const (
	defaultBaseURL     = "https://api.spacetraders.io/v2"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 5
	defaultBackoffBase = time.Second
)

// Client implements ports.GameAPI against the remote SpaceTraders
// service. Requests are rate limited to 2/s (burst 2) and retried with
// exponential backoff plus jitter on 429/5xx and network errors.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	token       string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
	log         *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the remote endpoint (test servers).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithRetries overrides the retry budget and backoff base.
func WithRetries(maxRetries int, backoffBase time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoffBase = backoffBase
	}
}

// WithRateLimit overrides the requests-per-second cap and burst.
func WithRateLimit(requests, burst int) Option {
	return func(c *Client) {
		c.rateLimiter = rate.NewLimiter(rate.Limit(requests), burst)
	}
}

// WithClock substitutes the clock used for backoff sleeps.
func WithClock(clock shared.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a client with the given bearer token.
func NewClient(token string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: rate.NewLimiter(rate.Limit(2), 2),
		baseURL:     defaultBaseURL,
		token:       token,
		maxRetries:  defaultMaxRetries,
		backoffBase: defaultBackoffBase,
		clock:       shared.NewRealClock(),
		log:         log.Named("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token (after a fresh registration).
func (c *Client) SetToken(token string) {
	c.token = token
}

// FetchAgent retrieves the authenticated agent.
func (c *Client) FetchAgent(ctx context.Context) (*game.Agent, error) {
	var response struct {
		Data agentJSON `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/my/agent", nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}
	agent := response.Data.toDomain()
	return &agent, nil
}

// Register creates a fresh agent. The call is unauthenticated; the
// returned token must be saved by the operator.
func (c *Client) Register(ctx context.Context, symbol, faction, email string) (*ports.RegisterResult, error) {
	body := map[string]string{
		"symbol":  symbol,
		"faction": faction,
	}
	if email != "" {
		body["email"] = email
	}

	var response struct {
		Data struct {
			Token    string       `json:"token"`
			Agent    agentJSON    `json:"agent"`
			Contract contractJSON `json:"contract"`
			Ship     shipJSON     `json:"ship"`
			Faction  struct {
				Symbol string `json:"symbol"`
			} `json:"faction"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/register", body, &response); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	agent := response.Data.Agent.toDomain()
	return &ports.RegisterResult{
		Token:    response.Data.Token,
		Agent:    &agent,
		Contract: response.Data.Contract.toDomain(),
		Ship:     response.Data.Ship.toDomain(),
		Faction:  response.Data.Faction.Symbol,
	}, nil
}

// addJitter spreads a backoff delay between 50% and 150% of its base.
func addJitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.5 + rand.Float64()))
}

// retryableError marks a failure worth another attempt.
type retryableError struct {
	message    string
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	return e.message
}

// request runs one rate-limited call with retries. 4xx responses other
// than 429 are terminal; 429, 503 and other 5xx back off and retry.
func (c *Client) request(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		var reqBody io.Reader
		if body != nil {
			jsonData, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			reqBody = bytes.NewBuffer(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &retryableError{message: fmt.Sprintf("network error: %v", err)}
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			var retryAfter time.Duration
			if header := resp.Header.Get("Retry-After"); header != "" {
				if seconds, err := strconv.Atoi(header); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			}
			lastErr = &retryableError{message: "rate limited (429)", retryAfter: retryAfter}

		case resp.StatusCode >= 500:
			lastErr = &retryableError{message: fmt.Sprintf("server error (%d)", resp.StatusCode)}

		case resp.StatusCode >= 400:
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))

		default:
			if result != nil {
				if err := json.Unmarshal(respBody, result); err != nil {
					return fmt.Errorf("failed to unmarshal response: %w", err)
				}
			}
			return nil
		}

		if attempt >= c.maxRetries {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		delay := addJitter(c.backoffBase * time.Duration(1<<attempt))
		if re, ok := lastErr.(*retryableError); ok && re.retryAfter > 0 {
			delay = re.retryAfter
		}
		c.log.Debug("retrying request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay))
		c.clock.Sleep(delay)
	}

	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return fmt.Errorf("max retries exceeded")
}
