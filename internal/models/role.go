package models

import (
	"fmt"
	"strings"
)

// Role 定義使用者在入口網站中的角色
type Role string

const (
	RoleTeacher Role = "teacher" // 教師
	RoleStudent Role = "student" // 學生
	RoleAdmin   Role = "admin"   // 管理員
)

// ParseRole 將字串轉換為角色，不區分大小寫
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid 檢查角色是否為已知的值
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// Counterpart 回傳聊天對象的角色：教師對學生、學生對教師。
// 管理員沒有聊天對象。
func (r Role) Counterpart() (Role, bool) {
	switch r {
	case RoleTeacher:
		return RoleStudent, true
	case RoleStudent:
		return RoleTeacher, true
	default:
		return "", false
	}
}
