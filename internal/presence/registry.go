package presence

import (
	"errors"
	"sort"
	"sync"
	"time"

	"campus_chat/internal/models"
)

var (
	// ErrChannelClosed 表示連線已關閉，無法再推送
	ErrChannelClosed = errors.New("channel closed")
	// ErrChannelBusy 表示連線的發送佇列已滿
	ErrChannelBusy = errors.New("channel send queue full")
)

// Channel 是一條活躍傳輸連線的不透明代號，只用於定址推送
type Channel interface {
	// ID 回傳連線的唯一識別碼
	ID() string
	// Push 把訊息交給連線的發送佇列，不可阻塞
	Push(msg *models.ChatMessage) error
}

// Entry 是一筆在線紀錄
type Entry struct {
	User        models.UserRef `json:"user"`
	ChannelID   string         `json:"channel_id"`
	ConnectedAt time.Time      `json:"connected_at"`

	channel Channel
}

// Registry 是使用者到連線的映射，所有方法都可以並行呼叫
type Registry struct {
	mu      sync.Mutex
	entries map[models.UserRef]Entry
	now     func() time.Time
}

// NewRegistry 創建一個空的 Registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[models.UserRef]Entry),
		now:     time.Now,
	}
}

// Register 無條件把 user 指向 ch，並回傳被取代的連線（如果有）
func (r *Registry) Register(user models.UserRef, ch Channel) (Channel, bool) {
	entry := Entry{
		User:        user,
		ChannelID:   ch.ID(),
		ConnectedAt: r.now(),
		channel:     ch,
	}

	r.mu.Lock()
	prev, ok := r.entries[user]
	r.entries[user] = entry
	r.mu.Unlock()

	if !ok {
		return nil, false
	}
	return prev.channel, true
}

// Lookup 回傳 user 目前的連線
func (r *Registry) Lookup(user models.UserRef) (Channel, bool) {
	r.mu.Lock()
	entry, ok := r.entries[user]
	r.mu.Unlock()

	if !ok {
		return nil, false
	}
	return entry.channel, true
}

// UnregisterIfCurrent 只有在 user 的紀錄仍指向 ch 時才移除，回傳是否真的移除
func (r *Registry) UnregisterIfCurrent(user models.UserRef, ch Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[user]
	if !ok || entry.ChannelID != ch.ID() {
		return false
	}
	delete(r.entries, user)
	return true
}

// Online 回傳目前所有在線紀錄的快照，依連線時間排序
func (r *Registry) Online() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].User.String() < out[j].User.String()
		}
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

// Len 回傳在線使用者數量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
