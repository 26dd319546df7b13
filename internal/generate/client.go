// Package generate calls the generation backend for a prompt, checks the
// answer against its contract, and writes successful answers through the
// response cache.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/trigtutor/internal/llm"
	"github.com/abhisek/trigtutor/internal/prompt"
)

// rawLogLimit caps how much backend text is logged on shape failures.
const rawLogLimit = 512

// Cache is the subset of the response cache the client needs.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, data any)
}

// Client is safe for concurrent use.
type Client struct {
	provider llm.Provider
	cache    Cache
	log      *zap.Logger
	group    singleflight.Group
}

// NewClient creates a client. A nil cache disables caching; a nil logger
// discards logs.
func NewClient(provider llm.Provider, c Cache, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{provider: provider, cache: c, log: log}
}

// Structured runs a prompt that carries a schema and decodes the answer into
// T. check, when non-nil, runs after decoding for rules the schema cannot
// express; its failure is a shape error.
func Structured[T any](ctx context.Context, c *Client, p prompt.Prompt, check func(T) error) (T, error) {
	return run(ctx, c, p, func(raw string) (T, error) {
		var out T
		if err := llm.ValidateResponse(p.Schema, raw); err != nil {
			return out, err
		}
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return out, fmt.Errorf("decode response: %w", err)
		}
		if check != nil {
			if err := check(out); err != nil {
				return out, err
			}
		}
		return out, nil
	})
}

// Text runs a plain-text prompt. The answer must be non-empty after
// trimming.
func (c *Client) Text(ctx context.Context, p prompt.Prompt) (string, error) {
	return run(ctx, c, p, func(raw string) (string, error) {
		text := strings.TrimSpace(raw)
		if text == "" {
			return "", errors.New("empty text response")
		}
		return text, nil
	})
}

func run[T any](ctx context.Context, c *Client, p prompt.Prompt, decode func(string) (T, error)) (T, error) {
	if !p.Cacheable || c.cache == nil {
		return call(ctx, c, p, "", decode)
	}

	key := p.CacheKey()
	var cached T
	if c.cache.Get(ctx, key, &cached) {
		c.log.Debug("cache hit", zap.String("op", p.Op), zap.String("key", key))
		return cached, nil
	}

	// Identical in-flight requests share one backend call. The shared call
	// is detached from the first caller's cancellation so that caller
	// leaving does not fail the others.
	ch := c.group.DoChan(key, func() (any, error) {
		return call(context.WithoutCancel(ctx), c, p, key, decode)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.log.Debug("coalesced in-flight request", zap.String("op", p.Op), zap.String("key", key))
		}
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, &Error{Op: p.Op, Kind: KindTransport, Err: ctx.Err()}
	}
}

// call performs one backend request. A non-empty key writes the decoded
// answer through to the cache.
func call[T any](ctx context.Context, c *Client, p prompt.Prompt, key string, decode func(string) (T, error)) (T, error) {
	var zero T
	ctx = llm.WithPurpose(ctx, p.Purpose)

	resp, err := c.provider.Generate(ctx, p.Request())
	if err != nil {
		gerr := classify(p.Op, err)
		c.log.Warn("generation failed",
			zap.String("op", p.Op),
			zap.Stringer("kind", gerr.Kind),
			zap.Error(err))
		return zero, gerr
	}

	out, err := decode(resp.Text)
	if err != nil {
		c.log.Warn("response does not match contract",
			zap.String("op", p.Op),
			zap.String("raw", truncate(resp.Text, rawLogLimit)),
			zap.Error(err))
		return zero, &Error{Op: p.Op, Kind: KindShape, Raw: resp.Text, Err: err}
	}

	if key != "" {
		c.cache.Set(ctx, key, out)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
