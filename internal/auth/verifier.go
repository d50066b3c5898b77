package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jawadev0/ussd-magician/internal/cache"
	"github.com/jawadev0/ussd-magician/internal/repo"
)

// ErrUnauthorized is returned for missing, unknown, revoked or expired
// bearer credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier resolves bearer tokens to user identities. Lookups hit the
// repository and are cached in Redis for a short TTL.
type Verifier struct {
	repo     repo.Repository
	redis    *cache.Redis
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewVerifier returns a token verifier. redis may be nil to disable caching.
func NewVerifier(repository repo.Repository, redis *cache.Redis, cacheTTL time.Duration, logger *slog.Logger) *Verifier {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Verifier{
		repo:     repository,
		redis:    redis,
		cacheTTL: cacheTTL,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}
}

// Verify resolves the bearer token to a user id.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthorized
	}

	key := cacheKey(token)
	if v.redis != nil {
		var userID string
		if found, err := v.redis.GetJSON(ctx, key, &userID); err != nil {
			v.logger.Warn("token cache read failed", "error", err)
		} else if found {
			return userID, nil
		}
	}

	t, err := v.repo.GetAPIToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if !t.Active {
		return "", ErrUnauthorized
	}
	if t.ExpiresAt != nil && t.ExpiresAt.Before(v.now()) {
		return "", ErrUnauthorized
	}

	if v.redis != nil {
		if err := v.redis.SetJSON(ctx, key, t.UserID, v.cacheTTL); err != nil {
			v.logger.Warn("token cache write failed", "error", err)
		}
	}
	return t.UserID, nil
}

// VerifyHeader extracts the bearer token from an Authorization header value
// and verifies it.
func (v *Verifier) VerifyHeader(ctx context.Context, header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrUnauthorized
	}
	return v.Verify(ctx, strings.TrimPrefix(header, prefix))
}

// Raw token values never enter Redis; cache keys are derived by hashing.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:token:" + hex.EncodeToString(sum[:])
}
