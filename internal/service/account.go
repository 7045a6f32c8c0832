package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campus_chat/internal/models"
	"campus_chat/internal/repository"
	"campus_chat/internal/utils"
)

type AccountService struct {
	accounts    repository.AccountRepository
	tokens      *utils.TokenManager
	adminSecret string
	logger      *zap.Logger
}

// NewAccountService 建立帳號服務；adminSecret 為空時停用管理員註冊
func NewAccountService(accounts repository.AccountRepository, tokens *utils.TokenManager, adminSecret string, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts:    accounts,
		tokens:      tokens,
		adminSecret: adminSecret,
		logger:      logger,
	}
}

// CreateAccount 建立一個新帳號，密碼以 bcrypt 雜湊保存
func (s *AccountService) CreateAccount(ctx context.Context, name, email, password string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, NewValidationError(ErrInvalidRole, FieldError{Field: "role", Error: "unknown role"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, NewValidationError(err, FieldError{Field: "email", Error: "email already registered"})
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("Account created",
		zap.String("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

// SignupAdmin 憑管理密鑰建立管理員帳號，用來建立系統的第一個帳號
func (s *AccountService) SignupAdmin(ctx context.Context, secretKey, name, email, password string) (*models.Account, error) {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(secretKey), []byte(s.adminSecret)) != 1 {
		s.logger.Warn("Admin signup rejected", zap.String("email", normalizeEmail(email)))
		return nil, ErrForbidden
	}
	return s.CreateAccount(ctx, name, email, password, models.RoleAdmin)
}

// Login 驗證帳號密碼並簽發 token
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(account.Identity())
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
