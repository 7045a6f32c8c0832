package models

import (
	"time"
)

// ChatMessage 代表一條已保存的教師與學生之間的聊天訊息，保存後不可修改
type ChatMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SenderID     string    `gorm:"type:varchar(64);not null;index:idx_chat_pair,priority:1" json:"sender"`
	SenderRole   Role      `gorm:"type:varchar(20);not null" json:"sender_role"`
	ReceiverID   string    `gorm:"type:varchar(64);not null;index:idx_chat_pair,priority:2" json:"receiver"`
	ReceiverRole Role      `gorm:"type:varchar(20);not null" json:"receiver_role"`
	Body         string    `gorm:"type:text;not null" json:"message"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// Sender 回傳發送者參照
func (m *ChatMessage) Sender() UserRef {
	return UserRef{ID: m.SenderID, Role: m.SenderRole}
}

// Receiver 回傳接收者參照
func (m *ChatMessage) Receiver() UserRef {
	return UserRef{ID: m.ReceiverID, Role: m.ReceiverRole}
}

// Involves 判斷訊息是否屬於 a 與 b 之間的對話（不分方向）
func (m *ChatMessage) Involves(a, b UserRef) bool {
	s, r := m.Sender(), m.Receiver()
	return (s == a && r == b) || (s == b && r == a)
}
