package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campus_chat/internal/models"
)

type memoryChatMessageRepository struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
	nextID   uint
	now      func() time.Time
}

func NewMemoryChatMessageRepository() ChatMessageRepository {
	return &memoryChatMessageRepository{now: time.Now}
}

func (r *memoryChatMessageRepository) Append(ctx context.Context, message *models.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	message.ID = r.nextID
	message.CreatedAt = r.now().UTC()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *memoryChatMessageRepository) Conversation(ctx context.Context, a, b models.UserRef) ([]models.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]models.ChatMessage, 0)
	for _, m := range r.messages {
		if m.Involves(a, b) {
			out = append(out, m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type memoryAccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Account
	byEmail map[string]string // 小寫 email -> id
}

func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		byID:    make(map[string]*models.Account),
		byEmail: make(map[string]string),
	}
}

func (r *memoryAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	r.byID[account.ID] = &stored
	r.byEmail[key] = account.ID
	return nil
}

func (r *memoryAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	account := *r.byID[id]
	return &account, nil
}

func (r *memoryAccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	account := *stored
	return &account, nil
}
