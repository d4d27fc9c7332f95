package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
)

// Token holds the OAuth credentials for one user's Gmail account.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// TokenProvider resolves the OAuth token for a user.
type TokenProvider interface {
	GetToken(ctx context.Context, userID string) (*Token, error)
}

// TokenServiceClient fetches OAuth tokens from the fronting auth service,
// which owns storage and refresh.
type TokenServiceClient struct {
	baseURL string
	client  *http.Client
}

// NewTokenServiceClient creates a client for the external token service.
func NewTokenServiceClient(baseURL string) *TokenServiceClient {
	return &TokenServiceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetToken fetches the user's Google OAuth token.
func (c *TokenServiceClient) GetToken(ctx context.Context, userID string) (*Token, error) {
	reqURL := fmt.Sprintf("%s/api/auth/tokens/google/%s", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("no google account connected for user: %w", apperrors.ErrUnauthenticated)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresAt    int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if result.AccessToken == "" {
		return nil, fmt.Errorf("token service returned empty access token: %w", apperrors.ErrUnauthenticated)
	}

	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Expiry:       time.Unix(result.ExpiresAt, 0),
	}, nil
}
