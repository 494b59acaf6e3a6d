package repository

import (
	"context"

	"gorm.io/gorm"

	"realestate/internal/model"
)

// MessageRepository defines message persistence operations.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id uint) (*model.Message, error)
	ListForUser(ctx context.Context, userID uint) ([]model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "Receiver", "Listing").Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Preload("Listing").
		First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListForUser returns every message the user sent or received, newest first.
func (r *messageRepository) ListForUser(ctx context.Context, userID uint) ([]model.Message, error) {
	messages := []model.Message{}
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Preload("Listing").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
