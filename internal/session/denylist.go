package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/config"
)

// Denylist tracks tokens revoked before their natural expiry (logout). JWTs
// are otherwise stateless, so revocation needs this shared lookaside. A nil
// *Denylist disables the check.
type Denylist struct {
	client *redis.Client
	logger *zap.Logger
}

// NewDenylist connects to Redis using the provided configuration.
func NewDenylist(cfg config.RedisConfig, logger *zap.Logger) *Denylist {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Denylist{client: client, logger: logger}
}

// Revoke marks the token dead until its expiry claim; after that the entry
// lapses since the token would fail verification anyway.
func (d *Denylist) Revoke(ctx context.Context, claims *auth.Claims) error {
	if d == nil || d.client == nil {
		return nil
	}
	ttl := time.Hour
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
		if ttl <= 0 {
			return nil
		}
	}
	return d.client.Set(ctx, denylistKey(claims), "1", ttl).Err()
}

// Contains reports whether the token was revoked. Callers must treat a
// lookup error as revoked: ambiguity is never authorization.
func (d *Denylist) Contains(ctx context.Context, claims *auth.Claims) (bool, error) {
	if d == nil || d.client == nil {
		return false, nil
	}
	err := d.client.Get(ctx, denylistKey(claims)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, err
}

// Ping verifies Redis connectivity.
func (d *Denylist) Ping(ctx context.Context) error {
	if d == nil || d.client == nil {
		return errors.New("redis client not configured")
	}
	return d.client.Ping(ctx).Err()
}

// Close closes the client.
func (d *Denylist) Close() {
	if d != nil && d.client != nil {
		_ = d.client.Close()
	}
}

func denylistKey(claims *auth.Claims) string {
	if claims.ID != "" {
		return "session:denylist:" + claims.ID
	}
	issued := int64(0)
	if claims.IssuedAt != nil {
		issued = claims.IssuedAt.Unix()
	}
	return fmt.Sprintf("session:denylist:%s:%d", claims.Subject, issued)
}
