package errors

import "net/http"

// 애플리케이션 전역 에러 코드. 도메인 패키지는 이 코드 위에 자체 코드를 정의합니다.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrForbidden       = "FORBIDDEN"
	ErrConflict        = "CONFLICT"
	ErrUnprocessable   = "UNPROCESSABLE"
	ErrTooManyRequests = "TOO_MANY_REQUESTS"
	ErrTimeout         = "TIMEOUT"
	ErrUnavailable     = "UNAVAILABLE"
)

var httpStatusByCode = map[string]int{
	ErrInternal:        http.StatusInternalServerError,
	ErrNotFound:        http.StatusNotFound,
	ErrInvalidArgument: http.StatusBadRequest,
	ErrUnauthenticated: http.StatusUnauthorized,
	ErrForbidden:       http.StatusForbidden,
	ErrConflict:        http.StatusConflict,
	ErrUnprocessable:   http.StatusUnprocessableEntity,
	ErrTooManyRequests: http.StatusTooManyRequests,
	ErrTimeout:         http.StatusGatewayTimeout,
	ErrUnavailable:     http.StatusServiceUnavailable,
}

// HTTPStatus는 코드에 대응하는 HTTP 상태를 반환합니다. 모르는 코드는 500입니다.
func HTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError는 코드가 4xx 계열인지 보고합니다
func IsClientError(code string) bool {
	return HTTPStatus(code) < http.StatusInternalServerError
}
