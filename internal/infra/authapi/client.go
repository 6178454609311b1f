package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quiz-rest-service/internal/domain"
)

// TokenVerifier validates a bearer token and returns the identity it carries.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.User, error)
}

// Client asks the hosted auth provider to validate tokens. Verification is
// fully delegated: the provider may rotate signing algorithms, so the service
// never checks signatures itself.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func NewClient(baseURL, anonKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: httpClient,
	}
}

// VerifyToken resolves the current user from the provider's user endpoint.
// Provider rejections map to domain.ErrInvalidToken; transport and 5xx
// failures surface as plain errors so callers answer 500, not 403.
func (c *Client) VerifyToken(ctx context.Context, token string) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return domain.User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.User{}, domain.ErrInvalidToken
	default:
		return domain.User{}, fmt.Errorf("auth provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.User{}, fmt.Errorf("decode auth response: %w", err)
	}
	if payload.ID == "" {
		return domain.User{}, domain.ErrInvalidToken
	}
	return domain.User{ID: payload.ID, Email: payload.Email, Role: payload.Role}, nil
}
