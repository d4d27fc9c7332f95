package gmailapi

import (
	"context"
	"fmt"

	"github.com/inboxpilot/inboxpilot-backend/internal/auth"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Factory builds a Gmail client authenticated as a specific user.
type Factory interface {
	ClientFor(ctx context.Context, userID string) (Client, error)
}

// tokenFactory builds clients from tokens resolved by the auth service.
type tokenFactory struct {
	tokens auth.TokenProvider
}

// NewFactory creates a Factory backed by the given token provider.
func NewFactory(tokens auth.TokenProvider) Factory {
	return &tokenFactory{tokens: tokens}
}

func (f *tokenFactory) ClientFor(ctx context.Context, userID string) (Client, error) {
	tok, err := f.tokens.GetToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving token for user: %w", err)
	}

	oauthToken := &oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	config := &oauth2.Config{
		Scopes: []string{gmail.GmailReadonlyScope},
	}
	httpClient := config.Client(ctx, oauthToken)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return NewClient(service), nil
}
