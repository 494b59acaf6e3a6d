package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"realestate/internal/errors"
	"realestate/internal/model"
	"realestate/internal/realtime"
	"realestate/internal/repository"
)

const publishTimeout = 2 * time.Second

// SendMessageInput carries a new message from the authenticated sender.
type SendMessageInput struct {
	ReceiverID uint
	ListingID  *uint
	Subject    string
	Content    string
}

// MessageSender is the sender summary carried in notifications.
type MessageSender struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MessageNotice is the message summary pushed to the receiver's room.
type MessageNotice struct {
	ID      uint          `json:"id"`
	Subject string        `json:"subject"`
	Content string        `json:"content"`
	Sender  MessageSender `json:"sender"`
}

// NewMessageEvent is the payload of the new_message event.
type NewMessageEvent struct {
	Message MessageNotice `json:"message"`
}

// MessageService persists messages and notifies receivers.
type MessageService interface {
	Send(ctx context.Context, senderID uint, in SendMessageInput) (*model.Message, error)
	List(ctx context.Context, userID uint) ([]model.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	publisher   realtime.Publisher
}

// NewMessageService creates a new message service.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	publisher realtime.Publisher,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		publisher:   publisher,
	}
}

// Send stores the message, then pushes a best-effort notification.
// A failed push never fails the send; the receiver still sees the
// message on the next List.
func (s *messageService) Send(ctx context.Context, senderID uint, in SendMessageInput) (*model.Message, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, errors.ErrContentRequired
	}

	if _, err := s.userRepo.FindByID(ctx, in.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReceiverNotFound
		}
		return nil, fmt.Errorf("find receiver: %w", err)
	}

	if in.ListingID != nil {
		exists, err := s.listingRepo.Exists(ctx, *in.ListingID)
		if err != nil {
			return nil, fmt.Errorf("check listing: %w", err)
		}
		if !exists {
			return nil, errors.ErrListingNotFound
		}
	}

	message := &model.Message{
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		ListingID:  in.ListingID,
		Subject:    in.Subject,
		Content:    in.Content,
		IsRead:     false,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	stored, err := s.messageRepo.FindByID(ctx, message.ID)
	if err != nil {
		return nil, fmt.Errorf("reload message: %w", err)
	}

	s.notify(ctx, stored)
	return stored, nil
}

func (s *messageService) notify(ctx context.Context, m *model.Message) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := NewMessageEvent{Message: MessageNotice{
		ID:      m.ID,
		Subject: m.Subject,
		Content: m.Content,
		Sender:  MessageSender{ID: m.Sender.ID, Name: m.Sender.Name},
	}}
	room := realtime.RoomName(m.ReceiverID)
	if err := s.publisher.Publish(ctx, room, realtime.EventNewMessage, event); err != nil {
		log.Printf("message %d: notify %s failed: %v", m.ID, room, err)
	}
}

func (s *messageService) List(ctx context.Context, userID uint) ([]model.Message, error) {
	messages, err := s.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
