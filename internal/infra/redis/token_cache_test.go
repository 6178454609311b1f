package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-rest-service/internal/domain"
)

func TestTokenCacheCachesValidTokens(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	verifier := &countingVerifier{users: map[string]domain.User{
		"good-token": {ID: "u1", Email: "u1@example.com", Role: "authenticated"},
	}}
	cache := NewTokenCache(newClient(mr), verifier, time.Minute)

	user, err := cache.VerifyToken(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected one provider call, got %d", verifier.calls)
	}

	// Second call should hit the cache.
	if _, err := cache.VerifyToken(context.Background(), "good-token"); err != nil {
		t.Fatalf("verify cached: %v", err)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected cache hit, provider calls=%d", verifier.calls)
	}
}

func TestTokenCacheNeverCachesRejections(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	verifier := &countingVerifier{users: map[string]domain.User{}}
	cache := NewTokenCache(newClient(mr), verifier, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.VerifyToken(context.Background(), "bad-token"); err != domain.ErrInvalidToken {
			t.Fatalf("expected invalid token error, got %v", err)
		}
	}
	if verifier.calls != 2 {
		t.Fatalf("rejections must re-hit the provider, calls=%d", verifier.calls)
	}

	if len(mr.Keys()) != 0 {
		t.Fatalf("rejected token must not be cached, keys=%v", mr.Keys())
	}
}

func TestTokenCacheKeysAreDigests(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	verifier := &countingVerifier{users: map[string]domain.User{
		"secret-bearer-token": {ID: "u1"},
	}}
	cache := NewTokenCache(newClient(mr), verifier, time.Minute)
	if _, err := cache.VerifyToken(context.Background(), "secret-bearer-token"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	for _, key := range mr.Keys() {
		if strings.Contains(key, "secret-bearer-token") {
			t.Fatalf("raw token written to redis: %s", key)
		}
	}
}

type countingVerifier struct {
	users map[string]domain.User
	calls int
}

func (v *countingVerifier) VerifyToken(_ context.Context, token string) (domain.User, error) {
	v.calls++
	if user, ok := v.users[token]; ok {
		return user, nil
	}
	return domain.User{}, domain.ErrInvalidToken
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
