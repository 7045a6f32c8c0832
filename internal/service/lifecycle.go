package service

import (
	"sync"

	"go.uber.org/zap"

	"campus_chat/internal/models"
	"campus_chat/internal/presence"
)

// ConnectionState 是單一傳輸連線的狀態
type ConnectionState int

const (
	StateAnonymous ConnectionState = iota
	StateIdentified
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateIdentified:
		return "identified"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ConnectionManager 處理連線的 connect/identify/disconnect 事件，
// 是唯一可以修改 presence.Registry 的元件
type ConnectionManager struct {
	presence *presence.Registry
	logger   *zap.Logger
}

func NewConnectionManager(registry *presence.Registry, logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		presence: registry,
		logger:   logger,
	}
}

// Connect 登記一條剛建立的連線，此時尚未綁定任何使用者
func (m *ConnectionManager) Connect(ch presence.Channel) *Connection {
	m.logger.Debug("Connection opened", zap.String("channel_id", ch.ID()))
	return &Connection{
		manager: m,
		channel: ch,
		state:   StateAnonymous,
	}
}

// Connection 是單一連線的狀態機: anonymous -> identified(user) -> closed
type Connection struct {
	mu      sync.Mutex
	manager *ConnectionManager
	channel presence.Channel
	state   ConnectionState
	user    models.UserRef
}

// Identify 把連線綁定到 user。可以重複呼叫，每次都重新登記並覆蓋該使用者先前的連線。
func (c *Connection) Identify(user models.UserRef) error {
	log := c.manager.logger.With(zap.String("channel_id", c.channel.ID()))

	if user.ID == "" {
		log.Warn("Identify ignored: missing user id")
		return NewValidationError(ErrMissingUserID, FieldError{Field: "userId", Error: "this field is required"})
	}
	if !user.Role.Valid() {
		log.Warn("Identify ignored: invalid role", zap.String("role", string(user.Role)))
		return NewValidationError(ErrInvalidRole, FieldError{Field: "role", Error: "unknown role"})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		log.Debug("Identify ignored: connection already closed", zap.Stringer("user", user))
		return nil
	}

	// 同一條連線改以其他身分登入時，先釋放舊身分
	if c.state == StateIdentified && c.user != user {
		c.manager.presence.UnregisterIfCurrent(c.user, c.channel)
	}

	prev, replaced := c.manager.presence.Register(user, c.channel)
	if replaced && prev.ID() != c.channel.ID() {
		log.Info("Presence taken over by newer connection",
			zap.Stringer("user", user),
			zap.String("previous_channel_id", prev.ID()),
		)
	}

	c.state = StateIdentified
	c.user = user
	log.Info("User online", zap.Stringer("user", user))
	return nil
}

// Disconnect 關閉連線，只有在 presence 仍指向本連線時才移除，回傳是否移除
func (c *Connection) Disconnect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	prevState := c.state
	c.state = StateClosed

	if prevState != StateIdentified {
		return false
	}

	removed := c.manager.presence.UnregisterIfCurrent(c.user, c.channel)
	log := c.manager.logger.With(
		zap.String("channel_id", c.channel.ID()),
		zap.Stringer("user", c.user),
	)
	if removed {
		log.Info("User offline")
	} else {
		log.Debug("Stale disconnect, newer connection kept")
	}
	return removed
}

// State 回傳目前的狀態
func (c *Connection) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// User 回傳已綁定的使用者
func (c *Connection) User() (models.UserRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdentified {
		return models.UserRef{}, false
	}
	return c.user, true
}
