package errors

import "go.uber.org/zap"

// LogError는 err를 error_code 필드와 함께 기록합니다.
// 클라이언트 에러(4xx 코드)는 Warn, 그 외는 Error 레벨입니다.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	code := CodeOf(err)
	fields = append([]zap.Field{zap.Error(err), zap.String("error_code", code)}, fields...)
	if IsClientError(code) {
		logger.Warn(msg, fields...)
		return
	}
	logger.Error(msg, fields...)
}
