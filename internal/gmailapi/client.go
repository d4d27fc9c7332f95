package gmailapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const (
	// MaxPageSize is the provider's hard cap on messages.list page size.
	MaxPageSize = 500

	// See https://developers.google.com/gmail/api/v1/reference/quota
	quotaUnitsMessagesGet     = 5
	quotaUnitsPerGetProfile   = 2
	quotaUnitsPerLabelsList   = 1
	quotaUnitsPerMessagesList = 1

	quotaUnitsPerSecond = 250
	rateLimitPerSecond  = quotaUnitsPerSecond * 0.8
	rateLimitBurst      = quotaUnitsPerSecond

	// maxGetAttempts caps retries of a rate-limited message fetch so one
	// stubborn message cannot stall a whole batch.
	maxGetAttempts = 3
)

// Client is the Gmail surface the sync pipeline depends on.
type Client interface {
	ListMessages(ctx context.Context, maxResults int64, pageToken string) (*gmail.ListMessagesResponse, error)
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
	GetProfile(ctx context.Context) (*gmail.Profile, error)
	ListLabels(ctx context.Context) ([]*gmail.Label, error)
}

// client wraps the generated Gmail service with quota-unit rate limiting so
// bursts of detail fetches stay inside the per-user quota.
type client struct {
	service *gmail.Service
	limiter *rate.Limiter
}

// NewClient wraps an authenticated Gmail service.
func NewClient(service *gmail.Service) Client {
	return &client{
		service: service,
		limiter: rate.NewLimiter(rateLimitPerSecond, rateLimitBurst),
	}
}

// ListMessages lists one page of message IDs for the authenticated user.
// maxResults is clamped to [1, MaxPageSize].
func (c *client) ListMessages(ctx context.Context, maxResults int64, pageToken string) (*gmail.ListMessagesResponse, error) {
	if err := c.limiter.WaitN(ctx, quotaUnitsPerMessagesList); err != nil {
		return nil, err
	}

	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	call := c.service.Users.Messages.List("me").MaxResults(maxResults).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return resp, nil
}

// GetMessage fetches one message in full format. Rate-limit rejections from
// the provider are retried up to maxGetAttempts; a missing message maps to
// ErrMessageNotFound.
func (c *client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	var lastErr error
	for attempt := 0; attempt < maxGetAttempts; attempt++ {
		if err := c.limiter.WaitN(ctx, quotaUnitsMessagesGet); err != nil {
			return nil, err
		}
		msg, err := c.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		if err == nil {
			return msg, nil
		}

		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.Code == http.StatusTooManyRequests {
				lastErr = err
				continue
			}
			if apiErr.Code == http.StatusNotFound {
				return nil, fmt.Errorf("message %s: %w", id, apperrors.ErrMessageNotFound)
			}
		}
		return nil, fmt.Errorf("getting message %s: %w", id, err)
	}
	return nil, fmt.Errorf("getting message %s: rate limited after %d attempts: %w", id, maxGetAttempts, lastErr)
}

// GetProfile fetches the authenticated user's mailbox profile.
func (c *client) GetProfile(ctx context.Context) (*gmail.Profile, error) {
	if err := c.limiter.WaitN(ctx, quotaUnitsPerGetProfile); err != nil {
		return nil, err
	}
	profile, err := c.service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return profile, nil
}

// ListLabels fetches all labels of the authenticated user.
func (c *client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	if err := c.limiter.WaitN(ctx, quotaUnitsPerLabelsList); err != nil {
		return nil, err
	}
	resp, err := c.service.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	return resp.Labels, nil
}
