package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"campus_chat/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// TokenManager 負責簽發與驗證 JWT token
type TokenManager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenManager 創建一個新的 TokenManager 實例
func NewTokenManager(secret string, expiration time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken 為指定身分生成一個新的 JWT token
func (m *TokenManager) GenerateToken(identity models.Identity) (string, error) {
	nowTime := m.now()
	expireTime := nowTime.Add(m.expiration)

	claims := Claims{
		UserID: identity.ID,
		Role:   string(identity.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   identity.ID,
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  nowTime.Unix(),
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(m.secret)
}

// ParseToken 解析和驗證 JWT token，回傳其中的身分
func (m *TokenManager) ParseToken(token string) (models.Identity, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || tokenClaims == nil || !tokenClaims.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	claims, ok := tokenClaims.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return models.Identity{}, ErrInvalidToken
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{ID: claims.UserID, Role: role}, nil
}
