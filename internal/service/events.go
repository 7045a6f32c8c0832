package service

import (
	"bytes"
	"encoding/json"
	"errors"
)

// WebSocket 事件類型
const (
	EventIdentify         = "identify"
	EventSend             = "send"
	EventIdentified       = "identified"
	EventMessageSaved     = "messageSaved"
	EventMessageDelivered = "messageDelivered"
	EventError            = "error"
)

// 錯誤事件代碼
const (
	CodeValidation    = "validation"
	CodePersistence   = "persistence"
	CodeForbidden     = "forbidden"
	CodeNotIdentified = "not_identified"
	CodeUnknownEvent  = "unknown_event"
	CodeInternal      = "internal"
)

// inboundFrame 是客戶端送來的事件外框，data 依 type 解析
type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// OutboundFrame 是伺服器送給客戶端的事件
type OutboundFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// IdentifyPayload 宣告連線所屬的使用者
type IdentifyPayload struct {
	UserID string `json:"userId" binding:"required"`
}

// SendPayload 透過 WebSocket 發送一條聊天訊息
type SendPayload struct {
	SenderID   string `json:"senderId" binding:"required"`
	ReceiverID string `json:"receiverId" binding:"required"`
	Body       string `json:"body"`
}

// IdentifiedPayload 回覆 identify 成功
type IdentifiedPayload struct {
	UserID string `json:"userId"`
}

// ErrorPayload 描述一個錯誤事件
type ErrorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// decodeStrict 只接受與 v 完全相符的欄位
func decodeStrict(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return NewValidationError(err)
	}
	return nil
}

// errorPayload 依錯誤類型轉成錯誤事件
func errorPayload(err error) ErrorPayload {
	var vErr *ValidationError
	var pErr *PersistenceError

	switch {
	case errors.As(err, &vErr):
		p := ErrorPayload{Code: CodeValidation, Message: vErr.Error()}
		if len(vErr.Fields) > 0 {
			p.Fields = make(map[string]string, len(vErr.Fields))
			for _, f := range vErr.Fields {
				p.Fields[f.Field] = f.Error
			}
		}
		return p
	case errors.As(err, &pErr):
		return ErrorPayload{Code: CodePersistence, Message: pErr.PublicMessage()}
	case errors.Is(err, ErrForbidden):
		return ErrorPayload{Code: CodeForbidden, Message: err.Error()}
	case errors.Is(err, ErrNotIdentified):
		return ErrorPayload{Code: CodeNotIdentified, Message: err.Error()}
	default:
		return ErrorPayload{Code: CodeInternal, Message: "internal error"}
	}
}
