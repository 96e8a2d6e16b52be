package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
)

const sampleConfig = `
server:
  port: 9090
  log_level: debug
  cors_origins:
    - https://app.lynkskill.test
  admin_token: ops-token
database:
  driver: postgres
  host: db.example.com
  port: 5432
  name: lynkskill
  user: lynk
cache:
  redis:
    enabled: true
    address: redis:6379
  permissions_ttl: 2m
auth:
  mode: oidc
  oidc:
    issuer: https://id.example.com
    client_id: lynkskill-web
identity:
  base_url: https://id.example.com/admin
  token_url: https://id.example.com/oauth/token
  client_id: svc
  client_secret: shh
email:
  smtp:
    enabled: true
    host: smtp.example.com
    port: 2525
    from: no-reply@example.com
    timeout: 15s
kafka:
  brokers: ["k1:9092", "k2:9092"]
maintenance:
  strict_cleanup: false
  audit_retention: 720h
invitations:
  base_url: https://app.lynkskill.test
  expiry: 72h
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, []string{"https://app.lynkskill.test"}, cfg.Server.CORSOrigins)
	require.Equal(t, "ops-token", cfg.Server.AdminToken)
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, "lynkskill", cfg.Database.ConnectionConfig().Name)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 2*time.Minute, cfg.Cache.PermissionsTTL)

	require.False(t, cfg.Auth.UsesJWT())
	require.Equal(t, "lynkskill-web", cfg.Auth.OIDCVerifierConfig().ClientID)
	require.True(t, cfg.Identity.SyncerConfig().Enabled())

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTPSettings().Timeout)

	require.True(t, cfg.Kafka.Enabled())
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.WriterConfig().Brokers)
	require.Equal(t, 50, cfg.Kafka.RelayOptions().BatchSize)

	require.False(t, cfg.Maintenance.StrictCleanup)
	require.Equal(t, 720*time.Hour, cfg.Maintenance.AuditRetention)
	require.Equal(t, "@hourly", cfg.Maintenance.ApplicationSchedule)

	require.Equal(t, 72*time.Hour, cfg.Invitations.Expiry)
	require.Equal(t, 30, cfg.RateLimit.PerUserBurst)
}

func TestLoadConfigDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("LYNKSKILL_SERVER_PORT", "7070")
	t.Setenv("LYNKSKILL_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LYNKSKILL_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.True(t, cfg.Auth.UsesJWT())
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 168*time.Hour, cfg.Invitations.Expiry)
	require.True(t, cfg.Maintenance.StrictCleanup)
}

func TestLoadConfigRejectsIncompleteOIDC(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "auth:\n  mode: oidc\n"))
	require.ErrorContains(t, err, "auth.oidc.issuer")

	_, err = LoadConfig(writeConfig(t, "auth:\n  mode: saml\n"))
	require.ErrorContains(t, err, "unknown auth.mode")
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := AuthConfig{JWT: JWTSettings{Secret: "s", Issuer: "iss", Audience: "aud"}}

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.DefaultAccessTokenTTL, jwtCfg.AccessTokenTTL)
	require.Equal(t, "aud", jwtCfg.Audience)

	require.Equal(t, defaultOIDCTimeout, cfg.OIDCVerifierConfig().Timeout)
}
