package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inboxpilot/inboxpilot-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// MaxListLimit caps the page size for message listing
	MaxListLimit = 100
	// DefaultListLimit is used when the caller supplies no limit
	DefaultListLimit = 20
)

// ListOptions holds the recognized filter/sort/pagination knobs for listing
// synced messages. Zero values mean "not supplied".
type ListOptions struct {
	Limit     int
	Offset    int
	Search    string
	Labels    []string
	SortBy    string
	SortOrder string
}

// SenderAggregate is one sender address with its message volume, used for
// the grouped-senders view.
type SenderAggregate struct {
	From         string `json:"from"`
	MessageCount int64  `json:"message_count"`
	LatestDate   string `json:"latest_date,omitempty"`
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	// Upsert writes the batch in one statement; on primary-key collision all
	// mutable fields are overwritten with the incoming values.
	Upsert(ctx context.Context, messages []models.Message) error
	List(ctx context.Context, userID string, opts ListOptions) ([]models.Message, int64, error)
	GetByID(ctx context.Context, userID, id string) (*models.Message, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	GroupBySender(ctx context.Context, userID string) ([]SenderAggregate, error)
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// sortColumns whitelists the recognized sort keys and maps them to columns.
var sortColumns = map[string]string{
	"date":    "date",
	"subject": "subject",
	"from":    "from_addr",
}

// Upsert bulk-inserts messages, falling back to a full-field overwrite of any
// existing row sharing the primary key (last write wins, no merge).
func (r *messageRepository) Upsert(ctx context.Context, messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "from_addr", "to_addr", "subject", "snippet",
			"body", "date", "label_ids", "sender_id",
		}),
	}).Create(&messages)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert messages: %w", result.Error)
	}
	return nil
}

// List retrieves one page of messages matching the filter, plus the total
// count over the same predicate. Results are always scoped to userID.
func (r *messageRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.Message, int64, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID)

		if search := strings.TrimSpace(opts.Search); search != "" {
			q = q.Where("LOWER(subject) LIKE ?", "%"+strings.ToLower(search)+"%")
		}

		if len(opts.Labels) > 0 {
			// label_ids is a JSON array; a label is present iff its quoted
			// form appears in the serialized column. Overlap = any match.
			overlap := r.db.Where(`label_ids LIKE ?`, `%"`+opts.Labels[0]+`"%`)
			for _, label := range opts.Labels[1:] {
				overlap = overlap.Or(`label_ids LIKE ?`, `%"`+label+`"%`)
			}
			q = q.Where(overlap)
		}

		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	q := filtered()
	if column, ok := sortColumns[opts.SortBy]; ok && (opts.SortOrder == "asc" || opts.SortOrder == "desc") {
		q = q.Order(fmt.Sprintf("%s %s", column, strings.ToUpper(opts.SortOrder)))
	}
	// Stable ordering across repeated identical calls.
	q = q.Order("id ASC")

	var results []models.Message
	if err := q.Limit(limit).Offset(offset).Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return results, total, nil
}

// GetByID retrieves a single message, scoped to its owner.
func (r *messageRepository) GetByID(ctx context.Context, userID, id string) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&message)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// CountByUser counts all stored messages for a user.
func (r *messageRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count messages: %w", result.Error)
	}
	return count, nil
}

// GroupBySender aggregates message counts per sender address, most active
// senders first.
func (r *messageRepository) GroupBySender(ctx context.Context, userID string) ([]SenderAggregate, error) {
	var results []SenderAggregate

	query := `
		SELECT
			m.from_addr AS "from",
			COUNT(*) AS message_count,
			COALESCE(CAST(MAX(m.date) AS TEXT), '') AS latest_date
		FROM messages m
		WHERE m.user_id = ?
		GROUP BY m.from_addr
		ORDER BY message_count DESC
	`

	if err := r.db.WithContext(ctx).Raw(query, userID).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to group messages by sender: %w", err)
	}

	return results, nil
}
