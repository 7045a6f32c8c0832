package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"campus_chat/internal/models"
	"campus_chat/internal/repository"
)

// MaxMessageBytes 是單一訊息內容的位元組上限，HTTP 與 WebSocket 共用
const MaxMessageBytes = 4000

// ChatService 是聊天的對外操作。HTTP 與 WebSocket 兩種傳輸都呼叫同一組方法，
// 先保存、再推送。
type ChatService struct {
	messages repository.ChatMessageRepository
	pusher   Pusher
	logger   *zap.Logger
}

func NewChatService(messages repository.ChatMessageRepository, pusher Pusher, logger *zap.Logger) *ChatService {
	return &ChatService{
		messages: messages,
		pusher:   pusher,
		logger:   logger,
	}
}

// SendMessage 保存訊息並嘗試即時推送給接收者。
// 回傳成功只代表訊息已保存；接收者是否在線不影響結果。
func (s *ChatService) SendMessage(ctx context.Context, sender, receiver models.UserRef, body string) (*models.ChatMessage, error) {
	if err := validateParticipants(sender, receiver); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, NewValidationError(ErrEmptyMessage, FieldError{Field: "message", Error: "this field is required"})
	}
	if len(body) > MaxMessageBytes {
		return nil, NewValidationError(ErrMessageTooLong, FieldError{
			Field: "message",
			Error: fmt.Sprintf("must be at most %d bytes", MaxMessageBytes),
		})
	}

	message := &models.ChatMessage{
		SenderID:     sender.ID,
		SenderRole:   sender.Role,
		ReceiverID:   receiver.ID,
		ReceiverRole: receiver.Role,
		Body:         body,
	}
	if err := s.messages.Append(ctx, message); err != nil {
		s.logger.Error("Failed to persist chat message",
			zap.Stringer("sender", sender),
			zap.Stringer("receiver", receiver),
			zap.Error(err),
		)
		return nil, &PersistenceError{Op: "persist chat message", Err: err}
	}

	outcome := s.pusher.Push(message)
	s.logger.Info("Chat message sent",
		zap.Uint("message_id", message.ID),
		zap.Stringer("sender", sender),
		zap.Stringer("receiver", receiver),
		zap.Stringer("delivery", outcome),
	)

	return message, nil
}

// GetHistory 回傳 a 與 b 之間的完整對話，依時間排序，與 presence 無關
func (s *ChatService) GetHistory(ctx context.Context, a, b models.UserRef) ([]models.ChatMessage, error) {
	if err := validateParticipants(a, b); err != nil {
		return nil, err
	}

	messages, err := s.messages.Conversation(ctx, a, b)
	if err != nil {
		s.logger.Error("Failed to load chat history",
			zap.Stringer("a", a),
			zap.Stringer("b", b),
			zap.Error(err),
		)
		return nil, &PersistenceError{Op: "load chat history", Err: err}
	}
	return messages, nil
}

// validateParticipants 確認雙方都有 ID，且是一位教師與一位學生
func validateParticipants(a, b models.UserRef) error {
	var flds []FieldError
	if a.ID == "" {
		flds = append(flds, FieldError{Field: "sender", Error: "this field is required"})
	}
	if b.ID == "" {
		flds = append(flds, FieldError{Field: "receiver", Error: "this field is required"})
	}
	if len(flds) > 0 {
		return NewValidationError(ErrMissingUserID, flds...)
	}

	if peer, ok := a.Role.Counterpart(); !ok || peer != b.Role {
		return NewValidationError(ErrInvalidParticipant)
	}
	return nil
}
