package models

// Identity 是身分驗證後得到的使用者身分，只能由 JWT 解析產生
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Ref 回傳對應的使用者參照
func (i Identity) Ref() UserRef {
	return UserRef{ID: i.ID, Role: i.Role}
}

// UserRef 以 (ID, 角色) 識別一位聊天參與者。
// 教師與學生的 ID 空間彼此獨立，單靠 ID 不足以區分。
type UserRef struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (u UserRef) String() string {
	return string(u.Role) + ":" + u.ID
}
