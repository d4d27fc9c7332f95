package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inboxpilot/inboxpilot-backend/internal/models"
	"gorm.io/gorm"
)

// SenderRepository defines the interface for sender data access
type SenderRepository interface {
	// FindOrCreate returns the sender row for (userID, orgName), creating it
	// on first encounter. Safe against concurrent creation of the same org
	// name: a uniqueness conflict is recovered by re-reading the winner row.
	FindOrCreate(ctx context.Context, userID, orgName string) (*models.Sender, error)
	GetByUserAndOrg(ctx context.Context, userID, orgName string) (*models.Sender, error)
	ListByUser(ctx context.Context, userID string) ([]models.Sender, error)
}

// senderRepository implements SenderRepository using GORM
type senderRepository struct {
	db *gorm.DB
}

// NewSenderRepository creates a new SenderRepository instance
func NewSenderRepository(db *gorm.DB) SenderRepository {
	return &senderRepository{db: db}
}

// GetByUserAndOrg retrieves a sender by its owner and organization name.
func (r *senderRepository) GetByUserAndOrg(ctx context.Context, userID, orgName string) (*models.Sender, error) {
	var sender models.Sender
	result := r.db.WithContext(ctx).Where("user_id = ? AND org_name = ?", userID, orgName).First(&sender)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sender: %w", result.Error)
	}
	return &sender, nil
}

func (r *senderRepository) FindOrCreate(ctx context.Context, userID, orgName string) (*models.Sender, error) {
	existing, err := r.GetByUserAndOrg(ctx, userID, orgName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	sender := &models.Sender{
		ID:      uuid.NewString(),
		UserID:  userID,
		OrgName: orgName,
	}
	createErr := r.db.WithContext(ctx).Create(sender).Error
	if createErr == nil {
		return sender, nil
	}

	if isDuplicateKeyError(createErr) {
		// A concurrent sync created the same org name first; use its row.
		winner, readErr := r.GetByUserAndOrg(ctx, userID, orgName)
		if readErr == nil {
			return winner, nil
		}
		// Re-read found nothing: propagate the original conflict.
	}
	return nil, fmt.Errorf("failed to create sender: %w", createErr)
}

// ListByUser retrieves all sender rows for a user.
func (r *senderRepository) ListByUser(ctx context.Context, userID string) ([]models.Sender, error) {
	var senders []models.Sender
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("org_name ASC").Find(&senders).Error; err != nil {
		return nil, fmt.Errorf("failed to list senders: %w", err)
	}
	return senders, nil
}
