package config

import "time"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PresignTTL   time.Duration
	MaxProofSize int64
	AllowedTypes []string
}

func (c StorageConfig) Enabled() bool { return c.Bucket != "" && c.Region != "" }

type EventsConfig struct {
	SNSTopicARN string
	Region      string
	Endpoint    string
}

func (c EventsConfig) Enabled() bool { return c.SNSTopicARN != "" }

type EmailConfig struct {
	SenderEmail string
	SenderName  string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

func (c EmailConfig) Enabled() bool { return c.SMTPHost != "" && c.SenderEmail != "" }

type GeoIPConfig struct {
	DatabasePath string
}

func (c GeoIPConfig) Enabled() bool { return c.DatabasePath != "" }

type SpiceDBConfig struct {
	Endpoint string
	Token    string
	Insecure bool
}

func (c SpiceDBConfig) Enabled() bool { return c.Endpoint != "" }
