package service

import (
	"go.uber.org/zap"

	"campus_chat/internal/presence"
	"campus_chat/internal/repository"
	"campus_chat/internal/utils"
	"campus_chat/pkg/config"
)

type Services struct {
	Account          *AccountService
	Chat             *ChatService
	Connections      *ConnectionManager
	WebSocketManager *WebSocketManager
	Presence         *presence.Registry
	Tokens           *utils.TokenManager
}

func NewServices(repos *repository.Repositories, tokens *utils.TokenManager, wsConfig config.WSConfig, adminConfig config.AdminConfig, logger *zap.Logger) *Services {
	registry := presence.NewRegistry()

	dispatcher := NewDispatcher(registry, logger.Named("dispatcher"))
	connections := NewConnectionManager(registry, logger.Named("presence"))
	chatService := NewChatService(repos.ChatMessage, dispatcher, logger.Named("chat"))
	wsManager := NewWebSocketManager(connections, chatService, wsConfig, logger.Named("websocket"))

	return &Services{
		Account:          NewAccountService(repos.Account, tokens, adminConfig.SecretKey, logger.Named("account")),
		Chat:             chatService,
		Connections:      connections,
		WebSocketManager: wsManager,
		Presence:         registry,
		Tokens:           tokens,
	}
}
