package service

import (
	"context"

	"trailmarket/internal/domain"
	"trailmarket/internal/models"

	"github.com/rs/zerolog"
)

type ChatService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewChatService(repo domain.Repository, logger *zerolog.Logger) *ChatService {
	return &ChatService{repo: repo, logger: logger}
}

// FindOrCreate returns the chat for the unordered participant pair, creating
// it on first use.
func (s *ChatService) FindOrCreate(ctx context.Context, a, b int64) (*models.Chat, error) {
	return s.repo.FindOrCreateChat(ctx, a, b)
}

func (s *ChatService) UserChats(ctx context.Context, userID int64) ([]*models.Chat, error) {
	return s.repo.GetUserChats(ctx, userID)
}

func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID int64, content string) (*models.Message, error) {
	if content == "" {
		return nil, ErrValidation
	}
	if _, err := s.repo.GetChat(ctx, chatID); err != nil {
		return nil, err
	}

	message := &models.Message{ChatID: chatID, SenderID: senderID, Content: content}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *ChatService) Messages(ctx context.Context, chatID int64) ([]*models.Message, error) {
	return s.repo.GetChatMessages(ctx, chatID)
}

// MarkMessageRead records the read receipt and returns the refreshed message
// so callers can fan out the full readBy set.
func (s *ChatService) MarkMessageRead(ctx context.Context, messageID, userID int64) (*models.Message, error) {
	if err := s.repo.MarkMessageRead(ctx, messageID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetMessage(ctx, messageID)
}

// MarkChatRead marks all messages from the other participant as read.
func (s *ChatService) MarkChatRead(ctx context.Context, chatID, userID int64) error {
	return s.repo.MarkChatRead(ctx, chatID, userID)
}
