package verification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "pocketcredit-backend/internal/domain/verification"
)

// CachedProvider keeps bureau pulls in Redis for ttl; identity and bank checks pass
// straight through. A cache outage degrades to a live pull.
type CachedProvider struct {
	domain.Provider
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewCachedProvider(inner domain.Provider, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedProvider {
	return &CachedProvider{Provider: inner, rdb: rdb, ttl: ttl, log: log}
}

func creditKey(pan string) string { return "credit:profile:" + pan }

func (c *CachedProvider) FetchCreditProfile(ctx context.Context, pan string) (domain.CreditProfile, error) {
	key := creditKey(pan)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.CreditProfile
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			return p, nil
		}
		c.log.Warn("credit cache: corrupt entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("credit cache: read failed", zap.Error(err))
	}

	p, err := c.Provider.FetchCreditProfile(ctx, pan)
	if err != nil {
		return p, err
	}
	if payload, jerr := json.Marshal(p); jerr == nil {
		if serr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.log.Warn("credit cache: write failed", zap.Error(serr))
		}
	}
	return p, nil
}
