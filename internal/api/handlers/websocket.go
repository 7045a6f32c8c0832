package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"campus_chat/internal/middleware"
	"campus_chat/internal/service"
)

// WebSocketHandler 處理 WebSocket 連接
type WebSocketHandler struct {
	wsManager *service.WebSocketManager
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例，allowedOrigins 為空時不檢查來源
func NewWebSocketHandler(wsManager *service.WebSocketManager, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
		wsManager: wsManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
		logger: logger,
	}
}

// HandleWebSocket 升級連線並處理事件，直到連線結束
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	identity, exists := middleware.CurrentIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if _, ok := identity.Role.Counterpart(); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	// 升級失敗時 upgrader 已寫入 HTTP 錯誤回應
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.wsManager.HandleConnection(c.Request.Context(), conn, identity)
}
