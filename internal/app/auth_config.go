package app

import (
	"strings"
	"time"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
)

const defaultOIDCTimeout = 10 * time.Second

// UsesJWT reports whether bearer tokens are verified with the shared HS256 secret.
func (c AuthConfig) UsesJWT() bool {
	mode := strings.ToLower(strings.TrimSpace(c.Mode))
	return mode == "" || mode == "jwt"
}

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		Audience:       c.JWT.Audience,
		AccessTokenTTL: ttl,
	}
}

// OIDCVerifierConfig converts AuthConfig into OIDC verifier parameters.
func (c AuthConfig) OIDCVerifierConfig() auth.OIDCConfig {
	timeout := c.OIDC.Timeout
	if timeout <= 0 {
		timeout = defaultOIDCTimeout
	}
	return auth.OIDCConfig{
		Issuer:   strings.TrimSpace(c.OIDC.Issuer),
		ClientID: strings.TrimSpace(c.OIDC.ClientID),
		Timeout:  timeout,
	}
}

// SyncerConfig converts IdentityConfig into the admin API client configuration.
func (c IdentityConfig) SyncerConfig() identity.Config {
	return identity.Config{
		BaseURL:      strings.TrimSpace(c.BaseURL),
		TokenURL:     strings.TrimSpace(c.TokenURL),
		ClientID:     strings.TrimSpace(c.ClientID),
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
		Timeout:      c.Timeout,
	}
}
