package http

import (
	"github.com/go-playground/validator/v10"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
)

// RequestValidator plugs the shared struct validator into echo
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: usecase.Validator()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return badRequest(usecase.ValidationMessage(err))
	}
	return nil
}
