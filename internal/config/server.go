package config

import "time"

type ServerConfig struct {
	HTTP HTTPConfig
	GRPC GRPCConfig
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    string
	CORSOrigins  []string
	RateLimit    RateLimitConfig
}

// RateLimitConfig applies per client IP on the public checkout routes.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type GRPCConfig struct {
	Host string
	Port int
}
