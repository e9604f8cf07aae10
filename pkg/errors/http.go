package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorBody는 모든 HTTP 에러 응답의 JSON 본문입니다
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ToHTTPError는 err를 응답 가능한 echo.HTTPError로 바꿉니다.
// 5xx 응답에는 원인이나 내부 메시지 대신 표준 상태 문구만 담습니다.
// 원본 err는 Internal에 남아 로깅에 쓰입니다.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var he *echo.HTTPError
	var appErr *AppError
	switch {
	case As(err, &appErr):
		status := HTTPStatus(appErr.code)
		body := ErrorBody{Error: appErr.message, Code: appErr.code}
		if status >= http.StatusInternalServerError {
			body.Error = http.StatusText(status)
		}
		return echo.NewHTTPError(status, body).SetInternal(err)
	case As(err, &he):
		return he
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, ErrorBody{
			Error: http.StatusText(http.StatusInternalServerError),
			Code:  ErrInternal,
		}).SetInternal(err)
	}
}
