package service

import (
	"go.uber.org/zap"

	"campus_chat/internal/models"
	"campus_chat/internal/presence"
)

// DeliveryOutcome 是一次即時推送的結果
type DeliveryOutcome int

const (
	// Delivered 表示訊息已交給接收者目前登記的連線
	Delivered DeliveryOutcome = iota
	// SkippedNotPresent 表示接收者不在線或連線已無法寫入，訊息只能透過歷史紀錄取得
	SkippedNotPresent
)

func (o DeliveryOutcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case SkippedNotPresent:
		return "skipped_not_present"
	default:
		return "unknown"
	}
}

// Pusher 把已保存的訊息推送給在線的接收者
type Pusher interface {
	Push(msg *models.ChatMessage) DeliveryOutcome
}

// Dispatcher 依據 presence 決定是否即時推送，最多推送一次，不重試也不排隊
type Dispatcher struct {
	presence *presence.Registry
	logger   *zap.Logger
}

func NewDispatcher(registry *presence.Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		presence: registry,
		logger:   logger,
	}
}

func (d *Dispatcher) Push(msg *models.ChatMessage) DeliveryOutcome {
	receiver := msg.Receiver()

	ch, ok := d.presence.Lookup(receiver)
	if !ok {
		d.logger.Debug("Receiver offline, delivery skipped",
			zap.Uint("message_id", msg.ID),
			zap.Stringer("receiver", receiver),
		)
		return SkippedNotPresent
	}

	if err := ch.Push(msg); err != nil {
		d.logger.Debug("Receiver channel unavailable, delivery skipped",
			zap.Uint("message_id", msg.ID),
			zap.Stringer("receiver", receiver),
			zap.String("channel_id", ch.ID()),
			zap.Error(err),
		)
		return SkippedNotPresent
	}

	d.logger.Debug("Message delivered",
		zap.Uint("message_id", msg.ID),
		zap.Stringer("receiver", receiver),
		zap.String("channel_id", ch.ID()),
	)
	return Delivered
}
