package models

import (
	"time"
)

// Account 表示可以登入的教師、學生或管理員帳號
type Account struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"` // 登入用電子郵件，必須唯一
	Password  string    `gorm:"not null" json:"-"`                 // bcrypt 雜湊，json 序列化時會被忽略
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity 回傳帳號對應的身分
func (a *Account) Identity() Identity {
	return Identity{ID: a.ID, Role: a.Role}
}
