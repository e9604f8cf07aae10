// Package config는 YAML 파일, .env, 환경 변수를 합친 설정 소스를 제공합니다.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config는 점(.)으로 구분된 키로 설정 값을 읽습니다
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	IsSet(key string) bool
	// ConfigFile은 실제로 읽은 파일 경로입니다
	ConfigFile() string
}

type source struct {
	*viper.Viper
}

func (s source) ConfigFile() string { return s.ConfigFileUsed() }

const (
	configDir  = "configs"
	exampleDir = "example"
	defaultEnv = "dev"
)

// Load는 serviceName.yaml을 찾아 읽습니다.
//
// 탐색 순서는 $CONFIG_PATH(없으면 configs/$APP_ENV) 다음 configs/example 입니다.
// 작업 디렉토리의 .env는 이미 설정된 환경 변수를 덮어쓰지 않습니다.
// 환경 변수 {SERVICE}_{KEY}가 파일 값보다 우선합니다. 예: PXVPAY_DATABASE_HOST -> database.host
func Load(serviceName string, defaults map[string]interface{}) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env 로드 실패: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	for _, dir := range searchPaths() {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("설정 파일 로드 실패 (%s.yaml, 경로 %v): %w", serviceName, searchPaths(), err)
	}
	return source{Viper: v}, nil
}

func searchPaths() []string {
	primary := os.Getenv("CONFIG_PATH")
	if primary == "" {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = defaultEnv
		}
		primary = filepath.Join(configDir, env)
	}
	return []string{primary, filepath.Join(configDir, exampleDir)}
}
