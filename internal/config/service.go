package config

import "time"

type ServiceConfig struct {
	Name          string
	Environment   string
	Version       string
	PublicBaseURL string
}

// SupabaseConfig holds the hosted auth/database project settings.
// Keys are never committed; use PXVPAY_SUPABASE_* env vars.
type SupabaseConfig struct {
	ProjectURL     string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	ProfilesTable  string
	RoleCacheTTL   time.Duration
}

// Enabled reports whether the hosted REST API is reachable with a server key.
func (c SupabaseConfig) Enabled() bool {
	return c.ProjectURL != "" && c.ServiceRoleKey != ""
}

type RealtimeConfig struct {
	SubscriberBuffer int
	ChannelPrefix    string
}
