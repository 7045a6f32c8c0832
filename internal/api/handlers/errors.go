package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"campus_chat/internal/service"
)

// respondError 把服務層錯誤轉換為 HTTP 回應
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var bindErrs validator.ValidationErrors
	var vErr *service.ValidationError
	var pErr *service.PersistenceError

	switch {
	case errors.As(err, &bindErrs):
		fldErrs := make(map[string]string, len(bindErrs))
		for _, fe := range bindErrs {
			fldErrs[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "fields": fldErrs})
	case errors.As(err, &vErr):
		body := gin.H{"error": vErr.Error()}
		if len(vErr.Fields) > 0 {
			fldErrs := make(map[string]string, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fldErrs[f.Field] = f.Error
			}
			body["fields"] = fldErrs
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.As(err, &pErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": pErr.PublicMessage()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
	}
}

// bindJSON 解析請求體，失敗時直接回應 400
func bindJSON(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		var bindErrs validator.ValidationErrors
		if errors.As(err, &bindErrs) {
			respondError(c, err)
			return false
		}
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
