package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newPayloadValidator 建立與 gin binding 相同規則的驗證器，錯誤欄位使用 json 名稱
func newPayloadValidator() *validator.Validate {
	validate := validator.New()
	validate.SetTagName("binding")
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func validatePayload(validate *validator.Validate, payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return NewValidationError(err)
	}

	flds := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		msg := "invalid value"
		if fe.Tag() == "required" {
			msg = "this field is required"
		}
		flds = append(flds, FieldError{Field: fe.Field(), Error: msg})
	}
	return NewValidationError(nil, flds...)
}
