package repository

import "campus_chat/internal/storage"

type Repositories struct {
	Account     AccountRepository
	ChatMessage ChatMessageRepository
}

// NewRepositories 建立以 PostgreSQL 為後端的 repositories
func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Account:     NewAccountRepository(db),
		ChatMessage: NewChatMessageRepository(db),
	}
}

// NewMemoryRepositories 建立存放在記憶體中的 repositories，用於測試與本機示範
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Account:     NewMemoryAccountRepository(),
		ChatMessage: NewMemoryChatMessageRepository(),
	}
}
