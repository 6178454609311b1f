package authapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-rest-service/internal/domain"
)

func TestClientVerifyToken(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("apikey") != "anon-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer valid-token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"user-1","email":"u@example.com","role":"authenticated"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer provider.Close()

	client := NewClient(provider.URL, "anon-key", nil)

	user, err := client.VerifyToken(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "user-1" || user.Role != "authenticated" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := client.VerifyToken(context.Background(), "expired-token"); err != domain.ErrInvalidToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestClientProviderFailureIsNotInvalidToken(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer provider.Close()

	client := NewClient(provider.URL, "anon-key", nil)
	_, err := client.VerifyToken(context.Background(), "any-token")
	if err == nil || err == domain.ErrInvalidToken {
		t.Fatalf("provider 5xx must not be reported as an invalid token, got %v", err)
	}
}

func TestDevVerifierRoundTrip(t *testing.T) {
	token, err := MintDevToken("dev-secret", "user-42", "dev@example.com", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	user, err := NewDevVerifier("dev-secret").VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "user-42" || user.Email != "dev@example.com" || user.Role != "authenticated" {
		t.Fatalf("unexpected claims: %+v", user)
	}

	if _, err := NewDevVerifier("other-secret").VerifyToken(context.Background(), token); err != domain.ErrInvalidToken {
		t.Fatalf("wrong secret must reject, got %v", err)
	}
	if _, err := NewDevVerifier("dev-secret").VerifyToken(context.Background(), "garbage"); err != domain.ErrInvalidToken {
		t.Fatalf("malformed token must reject, got %v", err)
	}
}

func TestDevVerifierRejectsExpired(t *testing.T) {
	token, err := MintDevToken("dev-secret", "user-42", "dev@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := NewDevVerifier("dev-secret").VerifyToken(context.Background(), token); err != domain.ErrInvalidToken {
		t.Fatalf("expired token must reject, got %v", err)
	}
}
