package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LYNKSKILL_SERVER_PORT.
const EnvPrefix = "LYNKSKILL"

// Config represents the runtime configuration for the LynkSkill backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Identity    IdentityConfig    `mapstructure:"identity"`
	Email       EmailConfig       `mapstructure:"email"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Invitations InvitationConfig  `mapstructure:"invitations"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	AdminToken      string        `mapstructure:"admin_token"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis          RedisCacheConfig `mapstructure:"redis"`
	PermissionsTTL time.Duration    `mapstructure:"permissions_ttl"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig selects how bearer tokens are verified.
type AuthConfig struct {
	// Mode is "jwt" for shared-secret session tokens or "oidc" for issuer signed ID tokens.
	Mode string       `mapstructure:"mode"`
	JWT  JWTSettings  `mapstructure:"jwt"`
	OIDC OIDCSettings `mapstructure:"oidc"`
}

// JWTSettings configures HS256 session token verification.
type JWTSettings struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"access_token_ttl"`
}

// OIDCSettings configures ID token verification against a discovery issuer.
type OIDCSettings struct {
	Issuer   string        `mapstructure:"issuer"`
	ClientID string        `mapstructure:"client_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// IdentityConfig points at the identity provider's admin API.
type IdentityConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	TokenURL     string        `mapstructure:"token_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Scopes       []string      `mapstructure:"scopes"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// KafkaConfig configures the domain event relay. No brokers disables publishing.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	BaseBackoff  time.Duration `mapstructure:"base_backoff"`
}

// MaintenanceConfig schedules background cleanup jobs using cron specs.
type MaintenanceConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	ApplicationSchedule string        `mapstructure:"application_schedule"`
	StrictCleanup       bool          `mapstructure:"strict_cleanup"`
	InvitationSchedule  string        `mapstructure:"invitation_schedule"`
	InvitationRetention time.Duration `mapstructure:"invitation_retention"`
	OutboxSchedule      string        `mapstructure:"outbox_schedule"`
	OutboxRetention     time.Duration `mapstructure:"outbox_retention"`
	AuditSchedule       string        `mapstructure:"audit_schedule"`
	AuditRetention      time.Duration `mapstructure:"audit_retention"`
	CacheSchedule       string        `mapstructure:"cache_schedule"`
}

// InvitationConfig controls invitation links and lifetime.
type InvitationConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Expiry  time.Duration `mapstructure:"expiry"`
}

// RateLimitConfig throttles callers. Zero values disable a limiter.
type RateLimitConfig struct {
	PerUserRPS   float64       `mapstructure:"per_user_rps"`
	PerUserBurst int           `mapstructure:"per_user_burst"`
	PublicMax    int           `mapstructure:"public_max"`
	PublicWindow time.Duration `mapstructure:"public_window"`
}

// LoadConfig reads .env, then config/config.yaml (or config.yaml in paths), then LYNKSKILL_
// environment overrides, on top of built-in defaults.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Auth.Mode)) {
	case "", "jwt":
	case "oidc":
		if strings.TrimSpace(c.Auth.OIDC.Issuer) == "" || strings.TrimSpace(c.Auth.OIDC.ClientID) == "" {
			return errors.New("config: auth.oidc.issuer and auth.oidc.client_id are required in oidc mode")
		}
	default:
		return fmt.Errorf("config: unknown auth.mode %q", c.Auth.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/lynkskill.sqlite")
	v.SetDefault("database.log_level", "silent")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.permissions_ttl", "5m")

	v.SetDefault("auth.mode", "jwt")
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "")
	v.SetDefault("auth.jwt.audience", "")
	v.SetDefault("auth.jwt.access_token_ttl", "15m")
	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.client_id", "")
	v.SetDefault("auth.oidc.timeout", "10s")

	v.SetDefault("identity.base_url", "")
	v.SetDefault("identity.token_url", "")
	v.SetDefault("identity.client_id", "")
	v.SetDefault("identity.client_secret", "")
	v.SetDefault("identity.scopes", []string{})
	v.SetDefault("identity.timeout", "10s")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.from", "")
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "lynkskill")
	v.SetDefault("kafka.batch_timeout", "1s")
	v.SetDefault("kafka.write_timeout", "10s")
	v.SetDefault("kafka.poll_interval", "3s")
	v.SetDefault("kafka.batch_size", 50)
	v.SetDefault("kafka.base_backoff", "5s")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.application_schedule", "@hourly")
	v.SetDefault("maintenance.strict_cleanup", true)
	v.SetDefault("maintenance.invitation_schedule", "@daily")
	v.SetDefault("maintenance.invitation_retention", "720h") // 30 days
	v.SetDefault("maintenance.outbox_schedule", "@daily")
	v.SetDefault("maintenance.outbox_retention", "168h")
	v.SetDefault("maintenance.audit_schedule", "@daily")
	v.SetDefault("maintenance.audit_retention", "2160h") // 90 days
	v.SetDefault("maintenance.cache_schedule", "@every 10m")

	v.SetDefault("invitations.base_url", "http://localhost:3000")
	v.SetDefault("invitations.expiry", "168h")

	v.SetDefault("rate_limit.per_user_rps", 10)
	v.SetDefault("rate_limit.per_user_burst", 30)
	v.SetDefault("rate_limit.public_max", 60)
	v.SetDefault("rate_limit.public_window", "1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
