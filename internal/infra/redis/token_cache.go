package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-rest-service/internal/domain"
	"quiz-rest-service/internal/infra/authapi"
)

// TokenCache caches successful token verifications for a short TTL to bound
// round-trips to the auth provider. Only valid results are cached; rejected
// tokens always go back to the provider. Keys are token digests, the raw
// token is never written to Redis.
type TokenCache struct {
	client   *redis.Client
	verifier authapi.TokenVerifier
	ttl      time.Duration
	sf       singleflight.Group
	rnd      *rand.Rand
}

func NewTokenCache(client *redis.Client, verifier authapi.TokenVerifier, ttl time.Duration) *TokenCache {
	return &TokenCache{
		client:   client,
		verifier: verifier,
		ttl:      ttl,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *TokenCache) VerifyToken(ctx context.Context, token string) (domain.User, error) {
	key := cacheKey(token)

	if user, ok := c.lookup(ctx, key); ok {
		return user, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine verified the same token.
		if user, ok := c.lookup(ctx, key); ok {
			return user, nil
		}

		user, err := c.verifier.VerifyToken(ctx, token)
		if err != nil {
			return domain.User{}, err
		}

		if data, err := json.Marshal(user); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return user, nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return result.(domain.User), nil
}

func (c *TokenCache) lookup(ctx context.Context, key string) (domain.User, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.User{}, false
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		return domain.User{}, false
	}
	return user, true
}

func (c *TokenCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return time.Minute
	}
	jitterMax := int64(c.ttl) / 10
	if jitterMax == 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cacheKey(token string) string {
	digest := sha256.Sum256([]byte(token))
	return "auth:token:" + hex.EncodeToString(digest[:])
}
