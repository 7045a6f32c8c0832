package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_chat/internal/presence"
)

// PresenceHandler 提供目前在線使用者的診斷資訊
type PresenceHandler struct {
	registry *presence.Registry
}

func NewPresenceHandler(registry *presence.Registry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

// ListOnline 回傳所有在線紀錄
func (h *PresenceHandler) ListOnline(c *gin.Context) {
	entries := h.registry.Online()
	c.JSON(http.StatusOK, gin.H{
		"count": len(entries),
		"users": entries,
	})
}
