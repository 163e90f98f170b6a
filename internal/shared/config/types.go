package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RedisConfig configures the durable key-value store. When Host is empty or
// Enabled is false the ledger runs on the in-memory stand-in.
type RedisConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Required         bool          `mapstructure:"required"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	DB               int           `mapstructure:"db"`
	TLS              bool          `mapstructure:"tls"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	MaxCASRetries    int           `mapstructure:"max_cas_retries"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HasCredentials reports whether enough settings are present to dial Redis.
func (r *RedisConfig) HasCredentials() bool {
	return r.Enabled && r.Host != "" && r.Port > 0
}

type ReferralConfig struct {
	// Network is "testnet" or "mainnet"; it decides the payment status of new gifts.
	Network             string        `mapstructure:"network"`
	RecentActivationTTL time.Duration `mapstructure:"recent_activation_ttl"`
	DefaultFeedLimit    int           `mapstructure:"default_feed_limit"`
	CronSecret          string        `mapstructure:"cron_secret"`
}

type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Timezone        string        `mapstructure:"timezone"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}
