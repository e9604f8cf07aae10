// Package errors는 코드가 붙은 애플리케이션 에러와 HTTP 변환을 제공합니다.
package errors

import (
	"errors"
	"fmt"
)

// 표준 errors 패키지를 함께 import하지 않도록 재노출합니다
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// AppError는 사용자에게 보여줄 메시지와 내부 원인을 분리해 담습니다.
// Error()에는 원인이 포함되지만 Message()에는 포함되지 않습니다.
type AppError struct {
	code    string
	message string
	cause   error
}

// NewAppError는 code와 사용자용 message로 에러를 만듭니다. cause는 nil일 수 있습니다.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{code: code, message: message, cause: cause}
}

func (e *AppError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *AppError) Code() string    { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Unwrap() error   { return e.cause }

// NotFound, InvalidArgument, Internal은 자주 쓰는 코드의 단축 생성자입니다
func NotFound(message string) *AppError {
	return NewAppError(ErrNotFound, message, nil)
}

func InvalidArgument(message string, cause error) *AppError {
	return NewAppError(ErrInvalidArgument, message, cause)
}

func Internal(message string, cause error) *AppError {
	return NewAppError(ErrInternal, message, cause)
}

// Wrap은 err에 문맥을 덧붙입니다. 체인에 AppError가 있으면 그 코드를 이어받고, 없으면 ErrInternal입니다.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return NewAppError(CodeOf(err), message, err)
}

// Wrapf는 포맷 메시지를 받는 Wrap입니다
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// CodeOf는 체인에서 가장 바깥 AppError의 코드를 반환합니다. 없으면 ErrInternal입니다.
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.code
	}
	return ErrInternal
}
