package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ptiporki19/pxv-pay-app-sub003/pkg/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/pkg/logger"
	"go.uber.org/zap"
)

// ServiceName is the config file name and the env prefix (PXVPAY_*).
const ServiceName = "pxvpay"

type Config struct {
	Service  ServiceConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Supabase SupabaseConfig
	Storage  StorageConfig
	Events   EventsConfig
	Email    EmailConfig
	GeoIP    GeoIPConfig
	SpiceDB  SpiceDBConfig
	Realtime RealtimeConfig
	Log      LogConfig

	// File is the config file that was read, empty when built with FromSource alone.
	File string
}

type LogConfig struct {
	Level       string
	Format      string
	Output      string
	FilePath    string
	Development bool
}

var defaults = map[string]interface{}{
	"service.name":                 "pxv-pay",
	"service.environment":          "dev",
	"server.http.host":             "0.0.0.0",
	"server.http.port":             8080,
	"server.http.read_timeout":     "15s",
	"server.http.write_timeout":    "0s",
	"server.http.rate_limit.rps":   10,
	"server.http.rate_limit.burst": 30,
	"server.http.body_limit":       "12M",
	"server.grpc.host":             "0.0.0.0",
	"server.grpc.port":             9090,
	"database.port":                5432,
	"database.sslmode":             "disable",
	"database.max_open_conns":      25,
	"database.max_idle_conns":      5,
	"database.conn_max_lifetime":   "30m",
	"database.conn_max_idle_time":  "5m",
	"database.slow_threshold":      "200ms",
	"supabase.profiles_table":      "profiles",
	"supabase.role_cache_ttl":      "1m",
	"storage.bucket":               "payment-proofs",
	"storage.presign_ttl":          "15m",
	"storage.max_proof_size":       10 << 20,
	"storage.allowed_types":        []string{"image/jpeg", "image/png", "image/webp", "application/pdf"},
	"email.smtp_port":              587,
	"email.sender_name":            "PXV Pay",
	"realtime.subscriber_buffer":   32,
	"realtime.channel_prefix":      "notifications",
	"log.level":                    "info",
	"log.format":                   "json",
	"log.output":                   "stdout",
}

// Load reads configs/{APP_ENV}/pxvpay.yaml (or $CONFIG_PATH) with PXVPAY_* env overrides.
func Load() (*Config, error) {
	cfg, err := pkgconfig.Load(ServiceName, defaults)
	if err != nil {
		return nil, err
	}

	c := FromSource(cfg)
	c.File = cfg.ConfigFile()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromSource maps a generic config source onto the typed Config.
func FromSource(cfg pkgconfig.Config) *Config {
	c := &Config{}

	c.Service.Name = cfg.GetString("service.name")
	c.Service.Environment = cfg.GetString("service.environment")
	c.Service.Version = cfg.GetString("service.version")
	c.Service.PublicBaseURL = cfg.GetString("service.public_base_url")

	c.Server.HTTP.Host = cfg.GetString("server.http.host")
	c.Server.HTTP.Port = cfg.GetInt("server.http.port")
	c.Server.HTTP.ReadTimeout = cfg.GetDuration("server.http.read_timeout")
	c.Server.HTTP.WriteTimeout = cfg.GetDuration("server.http.write_timeout")
	c.Server.HTTP.BodyLimit = cfg.GetString("server.http.body_limit")
	c.Server.HTTP.CORSOrigins = cfg.GetStringSlice("server.http.cors_origins")
	c.Server.HTTP.RateLimit.RPS = cfg.GetFloat64("server.http.rate_limit.rps")
	c.Server.HTTP.RateLimit.Burst = cfg.GetInt("server.http.rate_limit.burst")
	c.Server.GRPC.Host = cfg.GetString("server.grpc.host")
	c.Server.GRPC.Port = cfg.GetInt("server.grpc.port")

	c.Database.Host = cfg.GetString("database.host")
	c.Database.Port = cfg.GetInt("database.port")
	c.Database.Name = cfg.GetString("database.name")
	c.Database.User = cfg.GetString("database.user")
	c.Database.Password = cfg.GetString("database.password")
	c.Database.SSLMode = cfg.GetString("database.sslmode")
	c.Database.MaxOpenConns = cfg.GetInt("database.max_open_conns")
	c.Database.MaxIdleConns = cfg.GetInt("database.max_idle_conns")
	c.Database.ConnMaxLifetime = cfg.GetDuration("database.conn_max_lifetime")
	c.Database.ConnMaxIdleTime = cfg.GetDuration("database.conn_max_idle_time")
	c.Database.SlowThreshold = cfg.GetDuration("database.slow_threshold")

	c.Redis.Addr = cfg.GetString("redis.addr")
	c.Redis.Password = cfg.GetString("redis.password")
	c.Redis.DB = cfg.GetInt("redis.db")

	c.Supabase.ProjectURL = cfg.GetString("supabase.project_url")
	c.Supabase.AnonKey = cfg.GetString("supabase.anon_key")
	c.Supabase.ServiceRoleKey = cfg.GetString("supabase.service_role_key")
	c.Supabase.JWTSecret = cfg.GetString("supabase.jwt_secret")
	c.Supabase.ProfilesTable = cfg.GetString("supabase.profiles_table")
	c.Supabase.RoleCacheTTL = cfg.GetDuration("supabase.role_cache_ttl")

	c.Storage.Bucket = cfg.GetString("storage.bucket")
	c.Storage.Region = cfg.GetString("storage.region")
	c.Storage.Endpoint = cfg.GetString("storage.endpoint")
	c.Storage.AccessKey = cfg.GetString("storage.access_key")
	c.Storage.SecretKey = cfg.GetString("storage.secret_key")
	c.Storage.UsePathStyle = cfg.GetBool("storage.use_path_style")
	c.Storage.PresignTTL = cfg.GetDuration("storage.presign_ttl")
	c.Storage.MaxProofSize = cfg.GetInt64("storage.max_proof_size")
	c.Storage.AllowedTypes = cfg.GetStringSlice("storage.allowed_types")

	c.Events.SNSTopicARN = cfg.GetString("events.sns_topic_arn")
	c.Events.Region = cfg.GetString("events.region")
	c.Events.Endpoint = cfg.GetString("events.endpoint")

	c.Email.SenderEmail = cfg.GetString("email.sender_email")
	c.Email.SenderName = cfg.GetString("email.sender_name")
	c.Email.SMTPHost = cfg.GetString("email.smtp_host")
	c.Email.SMTPPort = cfg.GetInt("email.smtp_port")
	c.Email.SMTPUser = cfg.GetString("email.smtp_user")
	c.Email.SMTPPass = cfg.GetString("email.smtp_pass")

	c.GeoIP.DatabasePath = cfg.GetString("geoip.database_path")

	c.SpiceDB.Endpoint = cfg.GetString("spicedb.endpoint")
	c.SpiceDB.Token = cfg.GetString("spicedb.token")
	c.SpiceDB.Insecure = cfg.GetBool("spicedb.insecure")

	c.Realtime.SubscriberBuffer = cfg.GetInt("realtime.subscriber_buffer")
	c.Realtime.ChannelPrefix = cfg.GetString("realtime.channel_prefix")

	c.Log.Level = cfg.GetString("log.level")
	c.Log.Format = cfg.GetString("log.format")
	c.Log.Output = cfg.GetString("log.output")
	c.Log.FilePath = cfg.GetString("log.file_path")
	c.Log.Development = cfg.GetBool("log.development")

	return c
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database.host and database.name are required")
	}
	if c.Supabase.JWTSecret == "" {
		return fmt.Errorf("supabase.jwt_secret is required (set PXVPAY_SUPABASE_JWT_SECRET)")
	}
	if c.Server.HTTP.Port <= 0 {
		return fmt.Errorf("server.http.port must be positive")
	}
	if c.Storage.MaxProofSize <= 0 {
		return fmt.Errorf("storage.max_proof_size must be positive")
	}
	return nil
}

// NewLogger builds the service logger from the log section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	return logger.NewZapLogger(logger.Config{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		Output:      c.Log.Output,
		FilePath:    c.Log.FilePath,
		Development: c.Log.Development,
		Service:     c.Service.Name,
		Version:     c.Service.Version,
	})
}

// ShutdownTimeout bounds graceful shutdown of HTTP and gRPC servers.
const ShutdownTimeout = 30 * time.Second
