package mailsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inboxpilot/inboxpilot-backend/internal/classify"
	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
	"github.com/inboxpilot/inboxpilot-backend/internal/gmailapi"
	"github.com/inboxpilot/inboxpilot-backend/internal/logger"
	"github.com/inboxpilot/inboxpilot-backend/internal/models"
	"github.com/inboxpilot/inboxpilot-backend/internal/repository"
	"github.com/inboxpilot/inboxpilot-backend/internal/websocket"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
)

const (
	// DefaultBatchSize is the page size used when the caller supplies none.
	DefaultBatchSize = 100

	// maxConcurrentFetches bounds the parallel per-message detail fetches
	// within one batch.
	maxConcurrentFetches = 10
)

// BatchOptions controls a single sync batch.
type BatchOptions struct {
	// BatchSize is the requested page size. Values outside [1, 500] are
	// clamped by the provider client.
	BatchSize int
	// PageToken resumes listing from a previous batch. Empty means the
	// first page.
	PageToken string
	// AccurateTotal carries the mailbox total from an earlier batch so
	// follow-up batches skip the profile call.
	AccurateTotal int64
}

// BatchResult reports the outcome of one sync batch.
type BatchResult struct {
	SyncedCount   int    `json:"synced_count"`
	TotalCount    int64  `json:"total_count"`
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

// Service drives the incremental mailbox sync pipeline: list a page of
// message IDs, fetch details, normalize, classify senders, and upsert the
// batch. Batches are independent; resumption state lives entirely in the
// page token the caller holds.
type Service struct {
	clients    gmailapi.Factory
	messages   repository.MessageRepository
	senders    repository.SenderRepository
	classifier classify.Classifier
	hub        *websocket.Hub
	logger     *slog.Logger

	batchSize      int
	maxRetries     int
	baseRetryDelay time.Duration
	batchDelay     time.Duration
}

// Options holds the sync tuning knobs. Zero values fall back to defaults.
type Options struct {
	BatchSize      int
	MaxRetries     int
	BaseRetryDelay time.Duration
	BatchDelay     time.Duration
}

// NewService creates a sync service. The hub is optional; when nil no
// progress events are broadcast.
func NewService(
	clients gmailapi.Factory,
	messages repository.MessageRepository,
	senders repository.SenderRepository,
	classifier classify.Classifier,
	hub *websocket.Hub,
	logger *slog.Logger,
	opts Options,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseRetryDelay <= 0 {
		opts.BaseRetryDelay = time.Second
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	return &Service{
		clients:        clients,
		messages:       messages,
		senders:        senders,
		classifier:     classifier,
		hub:            hub,
		logger:         logger,
		batchSize:      opts.BatchSize,
		maxRetries:     opts.MaxRetries,
		baseRetryDelay: opts.BaseRetryDelay,
		batchDelay:     opts.BatchDelay,
	}
}

// SyncBatch fetches and stores one page of the user's mailbox. A batch is
// atomic with respect to storage: either its messages are upserted or the
// batch fails without touching prior batches.
func (s *Service) SyncBatch(ctx context.Context, userID string, opts BatchOptions) (BatchResult, error) {
	client, err := s.clients.ClientFor(ctx, userID)
	if err != nil {
		return BatchResult{}, err
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	// The list call only estimates the mailbox size, so the first batch
	// asks the profile for the authoritative total. Failure here falls
	// back to the list estimate rather than failing the batch.
	totalCount := opts.AccurateTotal
	if totalCount == 0 && opts.PageToken == "" {
		if profile, err := client.GetProfile(ctx); err != nil {
			s.logger.Warn("profile fetch failed, using list estimate",
				"user_id", userID, "error", err)
		} else {
			totalCount = profile.MessagesTotal
		}
	}

	list, err := client.ListMessages(ctx, int64(batchSize), opts.PageToken)
	if err != nil {
		return BatchResult{}, apperrors.Upstream("failed to fetch messages list", err)
	}
	if totalCount == 0 {
		totalCount = list.ResultSizeEstimate
	}

	// An empty page ends pagination regardless of any token the provider
	// may still hand back.
	if len(list.Messages) == 0 {
		s.logger.Info("empty batch, ending pagination", "user_id", userID)
		return BatchResult{}, nil
	}

	fetched := s.fetchDetails(ctx, client, list.Messages)

	records := make([]models.Message, 0, len(fetched))
	orgSenders := make(map[string]*string)
	for _, msg := range fetched {
		if msg == nil {
			continue
		}
		record := Normalize(userID, msg)
		if record.ID == "" || record.Body == "" || record.From == "" {
			s.logger.Debug("dropping message missing required fields",
				"user_id", userID, "message_id", record.ID)
			continue
		}
		record.SenderID = s.resolveSender(ctx, userID, record.From, orgSenders)
		records = append(records, record)
	}

	result := BatchResult{
		SyncedCount:   len(records),
		TotalCount:    totalCount,
		NextPageToken: list.NextPageToken,
		HasMore:       list.NextPageToken != "",
	}

	if len(records) == 0 {
		s.logger.Info("no valid messages in batch, continuing pagination",
			"user_id", userID)
		return result, nil
	}

	if err := s.messages.Upsert(ctx, records); err != nil {
		return BatchResult{}, apperrors.Storage("failed to upsert messages", err)
	}

	s.logger.Info("batch synced",
		"user_id", userID,
		"synced_count", result.SyncedCount,
		"total_count", result.TotalCount,
		"has_more", result.HasMore)
	return result, nil
}

// fetchDetails retrieves full messages concurrently. A failed fetch drops
// that message from the batch rather than failing the whole batch.
func (s *Service) fetchDetails(ctx context.Context, client gmailapi.Client, refs []*gmail.Message) []*gmail.Message {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	fetched := make([]*gmail.Message, len(refs))
	for i, ref := range refs {
		if ref == nil || ref.Id == "" {
			continue
		}
		g.Go(func() error {
			msg, err := client.GetMessage(gctx, ref.Id)
			if err != nil {
				s.logger.Warn("failed to fetch message detail",
					"message_id", ref.Id, "error", err)
				return nil
			}
			fetched[i] = msg
			return nil
		})
	}
	g.Wait()
	return fetched
}

// resolveSender classifies the address and attaches the sender row,
// memoizing per organization within the batch. Sender attachment is best
// effort and never fails a batch.
func (s *Service) resolveSender(ctx context.Context, userID, from string, cache map[string]*string) *string {
	if s.classifier == nil || s.senders == nil {
		return nil
	}
	orgName, err := s.classifier.Classify(ctx, from)
	if err != nil || orgName == "" {
		return nil
	}
	if id, ok := cache[orgName]; ok {
		return id
	}
	sender, err := s.senders.FindOrCreate(ctx, userID, orgName)
	if err != nil {
		s.logger.Warn("failed to resolve sender",
			"user_id", userID, "org_name", orgName, "error", err)
		cache[orgName] = nil
		return nil
	}
	id := sender.ID
	cache[orgName] = &id
	return &id
}

// SyncAll runs batches until the mailbox is exhausted. A failed batch is
// retried with the same page token under exponential backoff; exhausting
// the retries aborts the sync, leaving previously stored batches intact.
func (s *Service) SyncAll(ctx context.Context, userID string) (int64, error) {
	var totalSynced int64
	var pageToken string
	var accurateTotal int64
	attempts := 0

	for {
		result, err := s.SyncBatch(ctx, userID, BatchOptions{
			PageToken:     pageToken,
			AccurateTotal: accurateTotal,
		})
		if err != nil {
			if ctx.Err() != nil {
				return totalSynced, ctx.Err()
			}
			attempts++
			if attempts >= s.maxRetries {
				return totalSynced, fmt.Errorf("giving up after %d attempts: %w: %w",
					attempts, apperrors.ErrSyncAborted, err)
			}
			delay := s.baseRetryDelay << (attempts - 1)
			s.logger.Warn("batch failed, retrying with same token",
				"user_id", userID, "attempt", attempts, "delay", delay,
				"page_token", logger.RedactToken(pageToken), "error", err)
			if err := sleepContext(ctx, delay); err != nil {
				return totalSynced, err
			}
			continue
		}

		attempts = 0
		totalSynced += int64(result.SyncedCount)
		if result.TotalCount > 0 {
			accurateTotal = result.TotalCount
		}

		if s.hub != nil {
			s.hub.BroadcastSyncProgress(userID, &websocket.SyncProgressPayload{
				SyncedCount: result.SyncedCount,
				TotalSynced: totalSynced,
				TotalCount:  result.TotalCount,
				HasMore:     result.HasMore,
			})
		}

		if !result.HasMore {
			break
		}
		pageToken = result.NextPageToken

		if err := sleepContext(ctx, s.batchDelay); err != nil {
			return totalSynced, err
		}
	}

	s.logger.Info("sync complete", "user_id", userID, "total_synced", totalSynced)
	return totalSynced, nil
}

// Status reports how many messages are stored for the user.
func (s *Service) Status(ctx context.Context, userID string) (int64, error) {
	count, err := s.messages.CountByUser(ctx, userID)
	if err != nil {
		return 0, apperrors.Storage("failed to count synced messages", err)
	}
	return count, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
