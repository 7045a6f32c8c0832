package service

import (
	"errors"
	"strings"
)

var (
	ErrEmptyMessage       = errors.New("message body must not be empty")
	ErrMessageTooLong     = errors.New("message body is too long")
	ErrMissingUserID      = errors.New("user id is required")
	ErrInvalidRole        = errors.New("unknown role")
	ErrInvalidParticipant = errors.New("chat is only allowed between a teacher and a student")
	ErrNotIdentified      = errors.New("connection has not identified")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// FieldError 表示某個欄位的錯誤
type FieldError struct {
	Field string
	Error string
}

// ValidationError 表示呼叫者的輸入不合法，沒有產生任何副作用
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Field+": "+f.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PersistenceError 表示存取訊息儲存失敗。Op 描述失敗的操作，發送失敗時訊息沒有被保存也沒有被推送
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// PublicMessage 是可以回給客戶端的描述，不含底層錯誤
func (e *PersistenceError) PublicMessage() string {
	return "failed to " + e.Op
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation 判斷 err 是否為 ValidationError
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// IsPersistence 判斷 err 是否為 PersistenceError
func IsPersistence(err error) bool {
	var pErr *PersistenceError
	return errors.As(err, &pErr)
}
