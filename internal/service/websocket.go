package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"campus_chat/internal/models"
	"campus_chat/internal/presence"
	"campus_chat/pkg/config"
)

// 單一訊框的讀取上限。JSON 跳脫最多把一個位元組寫成六個（\u00XX），
// 再加上外框與 ID 欄位，長度合法的訊息一定放得進一個訊框。
const (
	frameOverhead  = 1024
	frameReadLimit = 6*MaxMessageBytes + frameOverhead
)

// Client 代表一個 WebSocket 客戶端連接，同時是 presence 中的連線代號。
// send 不會被關閉，避免並行推送時 panic；結束由 done 通知。
type Client struct {
	id       string
	conn     *websocket.Conn
	identity models.Identity // 升級連線時已驗證的身分
	send     chan OutboundFrame

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, identity models.Identity, sendBuffer int) *Client {
	return &Client{
		id:       uuid.NewString(),
		conn:     conn,
		identity: identity,
		send:     make(chan OutboundFrame, sendBuffer),
		done:     make(chan struct{}),
	}
}

// ID 回傳連線代號
func (c *Client) ID() string {
	return c.id
}

// Push 把訊息以 messageDelivered 事件排入發送佇列
func (c *Client) Push(msg *models.ChatMessage) error {
	return c.enqueue(OutboundFrame{Type: EventMessageDelivered, Data: msg})
}

// enqueue 不阻塞：連線已關閉或佇列已滿時立即回傳錯誤
func (c *Client) enqueue(frame OutboundFrame) error {
	select {
	case <-c.done:
		return presence.ErrChannelClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return presence.ErrChannelBusy
	}
}

// Close 通知寫入迴圈結束，可以重複呼叫
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// WebSocketManager 把 WebSocket 事件轉換成連線生命週期與聊天操作
type WebSocketManager struct {
	connections *ConnectionManager
	chat        *ChatService
	validate    *validator.Validate
	cfg         config.WSConfig
	logger      *zap.Logger
}

func NewWebSocketManager(connections *ConnectionManager, chat *ChatService, cfg config.WSConfig, logger *zap.Logger) *WebSocketManager {
	return &WebSocketManager{
		connections: connections,
		chat:        chat,
		validate:    newPayloadValidator(),
		cfg:         cfg,
		logger:      logger,
	}
}

// HandleConnection 處理一條已升級的連線，直到連線結束才返回
func (m *WebSocketManager) HandleConnection(ctx context.Context, conn *websocket.Conn, identity models.Identity) {
	client := newClient(conn, identity, m.cfg.SendBuffer)
	connection := m.connections.Connect(client)

	go m.writePump(client)

	// 同一條連線的事件只在 readPump 中依序處理
	m.readPump(ctx, client, connection)

	connection.Disconnect()
	client.Close()
}

// readPump 持續監聽並處理從客戶端接收的事件
func (m *WebSocketManager) readPump(ctx context.Context, client *Client, connection *Connection) {
	conn := client.conn
	conn.SetReadLimit(frameReadLimit)
	conn.SetReadDeadline(time.Now().Add(m.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(m.cfg.PongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("websocket unexpected close error",
					zap.String("channel_id", client.ID()),
					zap.Error(err),
				)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			m.logger.Debug("message parse error", zap.String("channel_id", client.ID()), zap.Error(err))
			m.replyError(client, NewValidationError(err))
			continue
		}

		switch frame.Type {
		case EventIdentify:
			m.handleIdentify(client, connection, frame.Data)
		case EventSend:
			m.handleSend(ctx, client, connection, frame.Data)
		default:
			m.replyFrame(client, OutboundFrame{
				Type: EventError,
				Data: ErrorPayload{Code: CodeUnknownEvent, Message: "unknown event type: " + frame.Type},
			})
		}
	}
}

func (m *WebSocketManager) handleIdentify(client *Client, connection *Connection, data json.RawMessage) {
	var payload IdentifyPayload
	if err := m.decode(data, &payload); err != nil {
		m.logger.Warn("Malformed identify payload", zap.String("channel_id", client.ID()), zap.Error(err))
		m.replyError(client, err)
		return
	}

	// 只能宣告自己的身分
	if payload.UserID != client.identity.ID {
		m.logger.Warn("Identify rejected: user id does not match token",
			zap.String("channel_id", client.ID()),
			zap.String("claimed_user_id", payload.UserID),
			zap.String("user_id", client.identity.ID),
		)
		m.replyError(client, ErrForbidden)
		return
	}

	if err := connection.Identify(client.identity.Ref()); err != nil {
		m.replyError(client, err)
		return
	}
	m.replyFrame(client, OutboundFrame{Type: EventIdentified, Data: IdentifiedPayload{UserID: payload.UserID}})
}

func (m *WebSocketManager) handleSend(ctx context.Context, client *Client, connection *Connection, data json.RawMessage) {
	sender, ok := connection.User()
	if !ok {
		m.replyError(client, ErrNotIdentified)
		return
	}

	var payload SendPayload
	if err := m.decode(data, &payload); err != nil {
		m.replyError(client, err)
		return
	}
	if payload.SenderID != sender.ID {
		m.replyError(client, ErrForbidden)
		return
	}

	peerRole, ok := sender.Role.Counterpart()
	if !ok {
		m.replyError(client, ErrForbidden)
		return
	}

	receiver := models.UserRef{ID: payload.ReceiverID, Role: peerRole}
	message, err := m.chat.SendMessage(ctx, sender, receiver, payload.Body)
	if err != nil {
		m.replyError(client, err)
		return
	}
	m.replyFrame(client, OutboundFrame{Type: EventMessageSaved, Data: message})
}

func (m *WebSocketManager) decode(data json.RawMessage, payload interface{}) error {
	if err := decodeStrict(data, payload); err != nil {
		return err
	}
	return validatePayload(m.validate, payload)
}

func (m *WebSocketManager) replyError(client *Client, err error) {
	m.replyFrame(client, OutboundFrame{Type: EventError, Data: errorPayload(err)})
}

func (m *WebSocketManager) replyFrame(client *Client, frame OutboundFrame) {
	if err := client.enqueue(frame); err != nil {
		m.logger.Debug("Reply dropped",
			zap.String("channel_id", client.ID()),
			zap.String("type", frame.Type),
			zap.Error(err),
		)
	}
}

// writePump 是唯一寫入連線的 goroutine，負責事件與心跳
func (m *WebSocketManager) writePump(client *Client) {
	conn := client.conn
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame := <-client.send:
			conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteWait))
			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				client.Close()
				return
			}
			if err := json.NewEncoder(w).Encode(frame); err != nil {
				m.logger.Warn("message encoding error", zap.String("channel_id", client.ID()), zap.Error(err))
				client.Close()
				return
			}
			if err := w.Close(); err != nil {
				client.Close()
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.Close()
				return
			}

		case <-client.done:
			conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
