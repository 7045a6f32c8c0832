package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_chat/internal/models"
	"campus_chat/internal/service"
)

// AuthHandler 處理與認證相關的請求
type AuthHandler struct {
	accountService *service.AccountService
}

// NewAuthHandler 創建一個新的 AuthHandler 實例
func NewAuthHandler(accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// LoginInput 定義登入請求的結構
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateAccountInput 定義建立帳號請求的結構
type CreateAccountInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// AdminSignupInput 定義管理員註冊請求的結構
type AdminSignupInput struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	SecretKey string `json:"secretKey" binding:"required"`
}

// Login 處理用戶登入
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	token, account, err := h.accountService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"id":    account.ID,
		"role":  account.Role,
	})
}

// CreateAccount 由管理員建立教師、學生或管理員帳號
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var input CreateAccountInput
	if !bindJSON(c, &input) {
		return
	}

	role, err := models.ParseRole(input.Role)
	if err != nil {
		respondError(c, service.NewValidationError(service.ErrInvalidRole, service.FieldError{Field: "role", Error: "unknown role"}))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), input.Name, input.Email, input.Password, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// AdminSignup 憑管理密鑰註冊管理員，不需要登入
func (h *AuthHandler) AdminSignup(c *gin.Context) {
	var input AdminSignupInput
	if !bindJSON(c, &input) {
		return
	}

	account, err := h.accountService.SignupAdmin(c.Request.Context(), input.SecretKey, input.Name, input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}
