package optimizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fingerprint returns the cache key of an input: the hex SHA-256 of its
// canonical JSON encoding. encoding/json sorts map keys, so equal inputs
// always produce equal keys.
func Fingerprint(input domain.NormalizedInput) (string, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("fingerprint input: %w", err)
	}
	sum := sha256.Sum256(b)
	return "optimize:" + hex.EncodeToString(sum[:]), nil
}

// CachingOptimizer serves repeated optimizations of identical inputs from a
// ResultCache and collapses concurrent identical calls into one upstream
// request. Cache failures degrade to a direct call.
type CachingOptimizer struct {
	next  ports.Optimizer
	cache ports.ResultCache
	group singleflight.Group
}

func NewCachingOptimizer(next ports.Optimizer, cache ports.ResultCache) *CachingOptimizer {
	return &CachingOptimizer{next: next, cache: cache}
}

func (c *CachingOptimizer) Optimize(ctx context.Context, input domain.NormalizedInput) (*domain.Result, error) {
	key, err := Fingerprint(input)
	if err != nil {
		return nil, fmt.Errorf("caching optimize: %w", err)
	}

	if cached, ok, err := c.cache.Get(ctx, key); err != nil {
		zap.S().Warnw("result cache read failed", "key", key, "err", err)
	} else if ok {
		return cached, nil
	}

	// The flight is shared, so one caller's cancellation must not fail the others.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := c.next.Optimize(flightCtx, input)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Put(flightCtx, key, *res); err != nil {
			zap.S().Warnw("result cache write failed", "key", key, "err", err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight get their own copy of the top-level struct.
	res := *v.(*domain.Result)
	return &res, nil
}
