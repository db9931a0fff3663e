package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"holidaze/internal/metrics"
	"holidaze/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// TokenSource yields the bearer token of the current session, or "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configure a Client.
type Options struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// Client calls the Holidaze REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client. tokens may be nil for anonymous use.
func NewClient(opts Options, tokens TokenSource, logger *zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		tokens:     tokens,
		logger:     logger.With().Str("component", "api").Logger(),
	}

	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "holidaze-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.SetCircuitOpen(to == gobreaker.StateOpen)
		},
	})
	return c
}

// UseRedisCache configures optional Redis caching for venue list pages.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// countsAsSuccess keeps client errors from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError
}

// call describes one API request.
type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	out      any
	meta     *models.PageMeta
}

type envelope struct {
	Data json.RawMessage  `json:"data"`
	Meta *models.PageMeta `json:"meta"`
}

func (c *Client) do(ctx context.Context, cl call) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var payload []byte
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", cl.endpoint, err)
		}
		payload = data
	}

	requestID := uuid.NewString()
	start := time.Now()
	status := 0

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := c.newRequest(ctx, cl, payload, requestID)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if resp.StatusCode >= 300 {
			return nil, decodeError(resp)
		}
		return nil, decodeBody(resp, cl.out, cl.meta)
	})

	elapsed := time.Since(start)
	metrics.ObserveAPI(cl.endpoint, status, elapsed)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("request_id", requestID).Str("endpoint", cl.endpoint).
			Int("status", status).Dur("elapsed", elapsed).Msg("api request failed")
		return err
	}

	c.logger.Debug().Str("request_id", requestID).Str("endpoint", cl.endpoint).
		Int("status", status).Dur("elapsed", elapsed).Msg("api request")
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call, payload []byte, requestID string) (*http.Request, error) {
	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if err := c.addHeaders(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *Client) addHeaders(ctx context.Context, req *http.Request) error {
	if c.apiKey != "" {
		req.Header.Set("X-Noroff-API-Key", c.apiKey)
	}
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// decodeBody unwraps the {"data", "meta"} envelope into out and meta. A body
// without an envelope is decoded into out as is.
func decodeBody(resp *http.Response, out any, meta *models.PageMeta) error {
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] != '{' {
		return json.Unmarshal(trimmed, out)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return json.Unmarshal(data, out)
	}
	if meta != nil && env.Meta != nil {
		*meta = *env.Meta
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	metrics.IncCacheHit()
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

// invalidateCache drops every cached key matching pattern.
func (c *Client) invalidateCache(ctx context.Context, pattern string) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("scan cached venue pages")
		return
	}
	if len(keys) > 0 {
		_ = c.redis.Del(ctx, keys...).Err()
	}
}
