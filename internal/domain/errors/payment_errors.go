package errors

import (
	"errors"
	"fmt"

	apperrors "github.com/ptiporki19/pxv-pay-app-sub003/pkg/errors"
)

// PaymentError represents errors from the checkout and verification workflow
type PaymentError struct {
	Type     string
	Message  string
	Resource string
	ID       string
	Cause    error
}

func (e *PaymentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%s: %s) - %v", e.Type, e.Message, e.Resource, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s (%s: %s)", e.Type, e.Message, e.Resource, e.ID)
}

func (e *PaymentError) Unwrap() error {
	return e.Cause
}

// Payment workflow error types
const (
	ErrTypeNotFound            = "NOT_FOUND"
	ErrTypeForbidden           = "FORBIDDEN"
	ErrTypeInvalidLinkState    = "INVALID_LINK_STATE"
	ErrTypeAmountOutOfRange    = "AMOUNT_OUT_OF_RANGE"
	ErrTypeAlreadyFinalized    = "ALREADY_FINALIZED"
	ErrTypeInvalidInput        = "INVALID_INPUT"
	ErrTypeCountryNotSupported = "COUNTRY_NOT_SUPPORTED"
	ErrTypeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrTypeConflict            = "CONFLICT"
)

func NewNotFoundError(resource, id string) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeNotFound,
		Message:  resource + " not found",
		Resource: resource,
		ID:       id,
	}
}

// NewForbiddenError carries a generic message so callers cannot probe ownership.
func NewForbiddenError(resource, id string) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeForbidden,
		Message:  "not allowed to act on this resource",
		Resource: resource,
		ID:       id,
	}
}

func NewInvalidLinkStateError(slug, status string) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeInvalidLinkState,
		Message:  fmt.Sprintf("checkout link is %s", status),
		Resource: "checkout_link",
		ID:       slug,
	}
}

func NewAmountOutOfRangeError(slug, amount, min, max string) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeAmountOutOfRange,
		Message:  fmt.Sprintf("amount %s must be between %s and %s", amount, min, max),
		Resource: "checkout_link",
		ID:       slug,
	}
}

func NewAlreadyFinalizedError(paymentID, status string) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeAlreadyFinalized,
		Message:  fmt.Sprintf("payment already %s", status),
		Resource: "payment",
		ID:       paymentID,
	}
}

func NewInvalidInputError(resource, message string, cause error) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeInvalidInput,
		Message:  message,
		Resource: resource,
		Cause:    cause,
	}
}

func NewCountryNotSupportedError(slug, country string) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeCountryNotSupported,
		Message:  fmt.Sprintf("country %s is not accepted by this checkout", country),
		Resource: "checkout_link",
		ID:       slug,
	}
}

func NewUpstreamUnavailableError(resource string, cause error) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeUpstreamUnavailable,
		Message:  resource + " is temporarily unavailable",
		Resource: resource,
		Cause:    cause,
	}
}

func NewConflictError(resource, id, message string, cause error) *PaymentError {
	return &PaymentError{
		Type:     ErrTypeConflict,
		Message:  message,
		Resource: resource,
		ID:       id,
		Cause:    cause,
	}
}

// IsType reports whether err wraps a PaymentError of the given type.
func IsType(err error, errType string) bool {
	var pe *PaymentError
	return errors.As(err, &pe) && pe.Type == errType
}

var typeToCode = map[string]string{
	ErrTypeNotFound:            apperrors.ErrNotFound,
	ErrTypeForbidden:           apperrors.ErrForbidden,
	ErrTypeInvalidLinkState:    apperrors.ErrConflict,
	ErrTypeAmountOutOfRange:    apperrors.ErrUnprocessable,
	ErrTypeAlreadyFinalized:    apperrors.ErrConflict,
	ErrTypeInvalidInput:        apperrors.ErrInvalidArgument,
	ErrTypeCountryNotSupported: apperrors.ErrInvalidArgument,
	ErrTypeUpstreamUnavailable: apperrors.ErrUnavailable,
	ErrTypeConflict:            apperrors.ErrConflict,
}

// ToAppError converts domain errors to coded application errors.
// Anything else becomes an internal error.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pe *PaymentError
	if errors.As(err, &pe) {
		code, ok := typeToCode[pe.Type]
		if !ok {
			code = apperrors.ErrInternal
		}
		return apperrors.NewAppError(code, pe.Message, err)
	}

	return apperrors.NewAppError(apperrors.ErrInternal, "internal error", err)
}
