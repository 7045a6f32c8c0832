package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_chat/internal/middleware"
	"campus_chat/internal/models"
	"campus_chat/internal/service"
)

// ChatHandler 處理教師與學生之間聊天的 HTTP 請求
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 創建一個新的 ChatHandler 實例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessageInput 定義發送訊息請求的結構
type SendMessageInput struct {
	Message string `json:"message"`
}

// SendMessage 保存訊息並嘗試即時推送給對方
func (h *ChatHandler) SendMessage(c *gin.Context) {
	self, peer, ok := participants(c)
	if !ok {
		return
	}

	var input SendMessageInput
	if !bindJSON(c, &input) {
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), self, peer, input.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetHistory 回傳與對方的完整對話紀錄
func (h *ChatHandler) GetHistory(c *gin.Context) {
	self, peer, ok := participants(c)
	if !ok {
		return
	}

	messages, err := h.chatService.GetHistory(c.Request.Context(), self, peer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// participants 從上下文與路徑取得聊天雙方，對方角色是呼叫者角色的對應角色
func participants(c *gin.Context) (models.UserRef, models.UserRef, bool) {
	identity, exists := middleware.CurrentIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.UserRef{}, models.UserRef{}, false
	}

	peerRole, ok := identity.Role.Counterpart()
	if !ok {
		respondError(c, service.ErrForbidden)
		return models.UserRef{}, models.UserRef{}, false
	}

	return identity.Ref(), models.UserRef{ID: c.Param("peerId"), Role: peerRole}, true
}
