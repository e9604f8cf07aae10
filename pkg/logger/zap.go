// Package logger는 zap 기반 로거와 echo, gRPC, gorm 어댑터를 제공합니다.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 로거 설정
type Config struct {
	// Level 로그 레벨 (debug, info, warn, error, dpanic, panic, fatal)
	Level string
	// Format json 또는 console
	Format string
	// Output 쉼표로 구분된 출력 대상 (stdout, stderr, file). 예: "stdout,file"
	Output string
	// FilePath Output에 file이 포함될 때 사용하는 경로
	FilePath string
	// Development 개발 모드 (컬러 레벨, 호출자 정보)
	Development bool
	// Service, Version 모든 로그에 service.name / service.version 으로 붙습니다.
	Service string
	Version string
}

// NewZapLogger 설정에 맞는 zap 로거를 생성합니다.
func NewZapLogger(config Config) (*zap.Logger, error) {
	sink, err := newWriteSyncer(config.Output, config.FilePath)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(config), sink, zap.NewAtomicLevelAt(ParseLevel(config.Level)))

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if config.Development {
		opts = append(opts, zap.AddCaller(), zap.Development())
	}

	var fields []zap.Field
	if config.Service != "" {
		fields = append(fields, zap.String("service.name", config.Service))
	}
	if config.Version != "" {
		fields = append(fields, zap.String("service.version", config.Version))
	}
	if len(fields) > 0 {
		opts = append(opts, zap.Fields(fields...))
	}

	return zap.New(core, opts...), nil
}

// newEncoder ECS 형식 키(@timestamp, log.level, message)를 사용합니다.
func newEncoder(config Config) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "@timestamp"
	ec.LevelKey = "log.level"
	ec.MessageKey = "message"
	ec.CallerKey = "log.origin"
	ec.StacktraceKey = "error.stack_trace"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	if config.Development {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if config.Format == "console" {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func newWriteSyncer(output, filePath string) (zapcore.WriteSyncer, error) {
	var syncers []zapcore.WriteSyncer
	for _, target := range strings.Split(output, ",") {
		switch strings.TrimSpace(target) {
		case "stderr":
			syncers = append(syncers, zapcore.Lock(os.Stderr))
		case "file":
			if filePath == "" {
				return nil, fmt.Errorf("log output \"file\"에는 file_path가 필요합니다")
			}
			if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
				return nil, fmt.Errorf("로그 디렉토리 생성 실패: %w", err)
			}
			f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, fmt.Errorf("로그 파일 열기 실패: %w", err)
			}
			syncers = append(syncers, zapcore.AddSync(f))
		case "stdout", "":
			syncers = append(syncers, zapcore.Lock(os.Stdout))
		default:
			return nil, fmt.Errorf("알 수 없는 로그 출력 대상: %q", target)
		}
	}
	if len(syncers) == 1 {
		return syncers[0], nil
	}
	return zapcore.NewMultiWriteSyncer(syncers...), nil
}

// ParseLevel은 문자열 레벨을 zapcore.Level로 변환합니다. 알 수 없는 값은 info입니다.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
