package logger

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/ptiporki19/pxv-pay-app-sub003/pkg/errors"
)

// NewEchoRequestLogger는 요청마다 한 줄의 접근 로그를 남기는 미들웨어를 생성합니다.
// skipPaths(헬스 체크, 메트릭 등)는 기록하지 않습니다. Authorization 헤더는 마스킹됩니다.
func NewEchoRequestLogger(logger *zap.Logger, skipPaths ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			_, ok := skip[c.Request().URL.Path]
			return ok
		},
		HandleError: true,

		LogLatency:      true,
		LogRemoteIP:     true,
		LogMethod:       true,
		LogURIPath:      true,
		LogRoutePath:    true,
		LogRequestID:    true,
		LogUserAgent:    true,
		LogStatus:       true,
		LogError:        true,
		LogResponseSize: true,
		LogHeaders:      []string{echo.HeaderAuthorization, echo.HeaderContentType},
		LogQueryParams:  []string{"page", "page_size", "status", "unread"},

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("http.request.method", v.Method),
				zap.String("url.path", v.URIPath),
				zap.String("http.route", v.RoutePath),
				zap.String("http.request.id", v.RequestID),
				zap.String("client.ip", v.RemoteIP),
				zap.String("user_agent.original", v.UserAgent),
				zap.Int("http.response.status_code", v.Status),
				zap.Int64("http.response.body.bytes", v.ResponseSize),
				zap.Duration("event.duration", v.Latency),
			}
			if headers := flattenHeaders(v.Headers); len(headers) > 0 {
				fields = append(fields, zap.Any("http.request.headers", headers))
			}
			if len(v.QueryParams) > 0 {
				fields = append(fields, zap.Any("url.query", v.QueryParams))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}

			switch {
			case v.Status >= http.StatusInternalServerError:
				logger.Error("Request failed", fields...)
			case v.Status >= http.StatusBadRequest:
				logger.Warn("Request rejected", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	})
}

func flattenHeaders(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, values := range h {
		if len(values) == 0 {
			continue
		}
		if strings.EqualFold(k, echo.HeaderAuthorization) {
			out[k] = MaskToken(values[0])
			continue
		}
		out[k] = values[0]
	}
	return out
}

// MaskToken은 Bearer 토큰의 앞뒤 일부만 남기고 마스킹합니다.
func MaskToken(val string) string {
	if len(val) > 15 {
		return val[:10] + "..." + val[len(val)-5:]
	}
	return "[MASKED]"
}

// WithEchoLogger는 Echo에 zap 로거와 JSON 에러 핸들러를 설정합니다.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := apperrors.ToHTTPError(err)

		// 4xx는 요청 로거가 이미 남기므로 서버 에러만 원인과 함께 기록합니다
		if he.Code >= http.StatusInternalServerError {
			apperrors.LogError(logger, err, "HTTP error",
				zap.Int("status", he.Code),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("ip", c.RealIP()),
			)
		}

		body := he.Message
		switch m := he.Message.(type) {
		case string:
			body = apperrors.ErrorBody{Error: m, Code: codeForStatus(he.Code)}
		case nil:
			body = apperrors.ErrorBody{Error: http.StatusText(he.Code), Code: codeForStatus(he.Code)}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			logger.Error("Failed to send error response", zap.Error(err))
		}
	}
}

// codeForStatus는 echo 기본 에러(404 라우트 없음, 405 등)에 붙일 코드를 정합니다.
func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusMethodNotAllowed, http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apperrors.ErrInvalidArgument
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthenticated
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusTooManyRequests:
		return apperrors.ErrTooManyRequests
	case http.StatusServiceUnavailable:
		return apperrors.ErrUnavailable
	}
	if status >= http.StatusInternalServerError {
		return apperrors.ErrInternal
	}
	return ""
}

// EchoZapLogger는 echo.Logger 인터페이스를 zap SugaredLogger 위에 구현합니다.
// 레벨, 출력, 헤더, 프리픽스는 zap 설정을 따르므로 Set* 호출은 무시됩니다.
type EchoZapLogger struct {
	Logger *zap.Logger
	sugar  *zap.SugaredLogger
}

var _ echo.Logger = (*EchoZapLogger)(nil)

// NewEchoZapLogger는 echo 내부 로그를 "component=echo" 필드와 함께 zap으로 보냅니다.
func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	named := logger.With(zap.String("component", "echo"))
	return &EchoZapLogger{Logger: named, sugar: named.Sugar()}
}

func (l *EchoZapLogger) Output() io.Writer   { return zapWriter{logger: l.Logger} }
func (l *EchoZapLogger) SetOutput(io.Writer) {}
func (l *EchoZapLogger) Prefix() string      { return "" }
func (l *EchoZapLogger) SetPrefix(string)    {}
func (l *EchoZapLogger) SetHeader(string)    {}
func (l *EchoZapLogger) SetLevel(log.Lvl)    {}

// Level은 zap 코어에서 활성화된 가장 낮은 레벨을 echo 레벨로 변환합니다.
func (l *EchoZapLogger) Level() log.Lvl {
	core := l.Logger.Core()
	for _, pair := range []struct {
		zl zapcore.Level
		el log.Lvl
	}{
		{zapcore.DebugLevel, log.DEBUG},
		{zapcore.InfoLevel, log.INFO},
		{zapcore.WarnLevel, log.WARN},
	} {
		if core.Enabled(pair.zl) {
			return pair.el
		}
	}
	return log.ERROR
}

func (l *EchoZapLogger) Print(i ...interface{})                 { l.sugar.Info(i...) }
func (l *EchoZapLogger) Printf(format string, i ...interface{}) { l.sugar.Infof(format, i...) }
func (l *EchoZapLogger) Printj(j log.JSON)                      { l.json(zapcore.InfoLevel, j) }
func (l *EchoZapLogger) Debug(i ...interface{})                 { l.sugar.Debug(i...) }
func (l *EchoZapLogger) Debugf(format string, i ...interface{}) { l.sugar.Debugf(format, i...) }
func (l *EchoZapLogger) Debugj(j log.JSON)                      { l.json(zapcore.DebugLevel, j) }
func (l *EchoZapLogger) Info(i ...interface{})                  { l.sugar.Info(i...) }
func (l *EchoZapLogger) Infof(format string, i ...interface{})  { l.sugar.Infof(format, i...) }
func (l *EchoZapLogger) Infoj(j log.JSON)                       { l.json(zapcore.InfoLevel, j) }
func (l *EchoZapLogger) Warn(i ...interface{})                  { l.sugar.Warn(i...) }
func (l *EchoZapLogger) Warnf(format string, i ...interface{})  { l.sugar.Warnf(format, i...) }
func (l *EchoZapLogger) Warnj(j log.JSON)                       { l.json(zapcore.WarnLevel, j) }
func (l *EchoZapLogger) Error(i ...interface{})                 { l.sugar.Error(i...) }
func (l *EchoZapLogger) Errorf(format string, i ...interface{}) { l.sugar.Errorf(format, i...) }
func (l *EchoZapLogger) Errorj(j log.JSON)                      { l.json(zapcore.ErrorLevel, j) }
func (l *EchoZapLogger) Fatal(i ...interface{})                 { l.sugar.Fatal(i...) }
func (l *EchoZapLogger) Fatalf(format string, i ...interface{}) { l.sugar.Fatalf(format, i...) }
func (l *EchoZapLogger) Fatalj(j log.JSON)                      { l.json(zapcore.FatalLevel, j) }
func (l *EchoZapLogger) Panic(i ...interface{})                 { l.sugar.Panic(i...) }
func (l *EchoZapLogger) Panicf(format string, i ...interface{}) { l.sugar.Panicf(format, i...) }
func (l *EchoZapLogger) Panicj(j log.JSON)                      { l.json(zapcore.PanicLevel, j) }

// json은 echo의 JSON 로그 맵을 키별 zap 필드로 펼칩니다.
func (l *EchoZapLogger) json(level zapcore.Level, j log.JSON) {
	ce := l.Logger.Check(level, "echo")
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, len(j))
	for k, v := range j {
		fields = append(fields, zap.Any(k, v))
	}
	ce.Write(fields...)
}

// zapWriter는 echo가 Output()에 직접 쓰는 바이트를 Info 로그로 남깁니다.
type zapWriter struct {
	logger *zap.Logger
}

func (w zapWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
