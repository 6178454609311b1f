package authapi

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quiz-rest-service/internal/domain"
)

// DevVerifier validates HS256 tokens against a static secret. It is selected
// only when no provider URL is configured (provider-less local runs); deployed
// environments must delegate validation to the provider client instead.
type DevVerifier struct {
	secret []byte
}

func NewDevVerifier(secret string) *DevVerifier {
	return &DevVerifier{secret: []byte(secret)}
}

func (v *DevVerifier) VerifyToken(_ context.Context, token string) (domain.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return domain.User{}, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.User{}, domain.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.User{}, domain.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return domain.User{ID: sub, Email: email, Role: role}, nil
}

// MintDevToken signs a short-lived HS256 token for local testing.
func MintDevToken(secret, sub, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret is required")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"role":  "authenticated",
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
