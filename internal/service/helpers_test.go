package service

import (
	"context"
	"sync"

	"campus_chat/internal/models"
	"campus_chat/internal/repository"
)

var (
	teacher = models.UserRef{ID: "t1", Role: models.RoleTeacher}
	student = models.UserRef{ID: "st1", Role: models.RoleStudent}
)

type fakeChannel struct {
	mu     sync.Mutex
	id     string
	pushed []*models.ChatMessage
	err    error
}

func newFakeChannel(id string) *fakeChannel {
	return &fakeChannel{id: id}
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Push(msg *models.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	c.pushed = append(c.pushed, msg)
	return nil
}

func (c *fakeChannel) Pushed() []*models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*models.ChatMessage(nil), c.pushed...)
}

// countingStore 包裝記憶體 repository 並記錄呼叫次數
type countingStore struct {
	repository.ChatMessageRepository
	mu      sync.Mutex
	appends int
	err     error
}

func newCountingStore() *countingStore {
	return &countingStore{ChatMessageRepository: repository.NewMemoryChatMessageRepository()}
}

func (s *countingStore) Append(ctx context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	s.appends++
	err := s.err
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return s.ChatMessageRepository.Append(ctx, message)
}

func (s *countingStore) Conversation(ctx context.Context, a, b models.UserRef) ([]models.ChatMessage, error) {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return s.ChatMessageRepository.Conversation(ctx, a, b)
}

func (s *countingStore) Appends() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appends
}

// recordingPusher 記錄每次推送並回傳底層 Pusher 的結果
type recordingPusher struct {
	next   Pusher
	mu     sync.Mutex
	pushes []DeliveryOutcome
}

func (p *recordingPusher) Push(msg *models.ChatMessage) DeliveryOutcome {
	outcome := p.next.Push(msg)

	p.mu.Lock()
	p.pushes = append(p.pushes, outcome)
	p.mu.Unlock()
	return outcome
}

func (p *recordingPusher) Outcomes() []DeliveryOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]DeliveryOutcome(nil), p.pushes...)
}
