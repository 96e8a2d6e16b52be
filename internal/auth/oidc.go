package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCConfig configures verification of ID tokens issued by an OpenID Connect provider.
type OIDCConfig struct {
	Issuer     string
	ClientID   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// OIDCVerifier verifies ID tokens against the issuer's published JWKS.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier performs discovery against the issuer and returns a verifier.
func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig) (*OIDCVerifier, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("oidc: issuer is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("oidc: client id is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}
	discoveryCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	provider, err := oidc.NewProvider(discoveryCtx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc: discovery failed: %w", err)
	}

	return NewOIDCVerifierFrom(provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})), nil
}

// NewOIDCVerifierFrom wraps an existing go-oidc verifier.
func NewOIDCVerifierFrom(verifier *oidc.IDTokenVerifier) *OIDCVerifier {
	return &OIDCVerifier{verifier: verifier}
}

type oidcClaims struct {
	Email          string         `json:"email"`
	EmailVerified  *bool          `json:"email_verified"`
	Name           string         `json:"name"`
	PublicMetadata PublicMetadata `json:"public_metadata"`
}

// Verify implements Verifier.
func (v *OIDCVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	return &Identity{
		ExternalID: idToken.Subject,
		Email:      strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:       claims.Name,
		Role:       parseRole(claims.PublicMetadata.Role),
	}, nil
}
