package repository

import (
	"context"
	"fmt"

	"campus_chat/internal/models"
	"campus_chat/internal/storage"
)

// ChatMessageRepository 是聊天訊息的持久化儲存，只能追加
type ChatMessageRepository interface {
	// Append 保存訊息，並由儲存層填入 ID 與建立時間
	Append(ctx context.Context, message *models.ChatMessage) error
	// Conversation 回傳 a 與 b 之間雙向的所有訊息，依建立時間與 ID 排序
	Conversation(ctx context.Context, a, b models.UserRef) ([]models.ChatMessage, error)
}

type chatMessageRepository struct {
	db *storage.PostgresDB
}

func NewChatMessageRepository(db *storage.PostgresDB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Append(ctx context.Context, message *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

func (r *chatMessageRepository) Conversation(ctx context.Context, a, b models.UserRef) ([]models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0)
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND sender_role = ? AND receiver_id = ? AND receiver_role = ?) OR (sender_id = ? AND sender_role = ? AND receiver_id = ? AND receiver_role = ?)",
			a.ID, a.Role, b.ID, b.Role,
			b.ID, b.Role, a.ID, a.Role).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	return messages, nil
}
