package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfabbri/lexanno/internal/cache"
	"github.com/mfabbri/lexanno/internal/model"
)

// Client wraps a Provider with response caching, rate limiting, and bounded
// idempotent retries. Retries always resend the exact same request; after the
// budget is exhausted the call fails instead of hanging.
type Client struct {
	provider   Provider
	cache      cache.Cache
	cacheTTL   time.Duration
	limiter    RateWaiter
	maxRetries int
	retryDelay time.Duration
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithCache enables completion-response caching
func WithCache(c cache.Cache, ttl time.Duration) ClientOption {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithLimiter gates backend calls through a shared rate limiter
func WithLimiter(l RateWaiter) ClientOption {
	return func(cl *Client) {
		cl.limiter = l
	}
}

// NewClient creates a client around the given provider
func NewClient(provider Provider, cfg model.BackendConfig, opts ...ClientOption) *Client {
	c := &Client{
		provider:   provider,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
	if c.retryDelay == 0 {
		c.retryDelay = time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the underlying provider
func (c *Client) Provider() Provider {
	return c.provider
}

// Complete sends a request, consulting the cache first. On backend failure
// the identical request is resent up to the retry budget; the last error is
// then surfaced as a backend-unavailable condition.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	key := cache.Key(c.provider.Name(), req.Model, req.System, req.User)

	if c.cache != nil {
		if data, found := c.cache.Get(key); found {
			var resp CompletionResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				return &resp, nil
			}
			// Corrupt entry; drop it and go to the backend.
			_ = c.cache.Delete(key)
		}
	}

	var resp *CompletionResponse
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		if c.limiter != nil {
			if werr := c.limiter.Wait(ctx, c.provider.Name()); werr != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, werr)
			}
		}

		resp, err = c.provider.Complete(ctx, req)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %d attempts failed: %v", model.ErrBackendUnavailable, c.maxRetries+1, err)
	}

	if c.cache != nil {
		if data, merr := json.Marshal(resp); merr == nil {
			_ = c.cache.Set(key, data, c.cacheTTL)
		}
	}

	return resp, nil
}
