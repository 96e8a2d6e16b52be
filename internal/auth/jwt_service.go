package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// DefaultAccessTokenTTL defines the fallback validity period for access tokens.
const DefaultAccessTokenTTL = 15 * time.Minute

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret         string
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
	Clock          func() time.Time
}

// Claims are the session token claims issued by the identity provider. The subject is the
// provider's user id.
type Claims struct {
	Email          string         `json:"email"`
	Name           string         `json:"name,omitempty"`
	PublicMetadata PublicMetadata `json:"public_metadata,omitempty"`
	jwt.RegisteredClaims
}

// PublicMetadata mirrors the metadata this service writes back to the provider.
type PublicMetadata struct {
	Role               string `json:"role,omitempty"`
	OnboardingComplete bool   `json:"onboarding_complete,omitempty"`
}

// AccessTokenInput holds the parameters used when generating a new access token.
type AccessTokenInput struct {
	ExternalID string
	Email      string
	Name       string
	Role       models.UserRole
}

// JWTService issues and validates HS256 session tokens shared with the identity provider.
type JWTService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWTService constructs a JWTService instance when provided with the required configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &JWTService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      now,
	}, nil
}

// GenerateAccessToken issues a signed JWT. Used by tests and local tooling.
func (s *JWTService) GenerateAccessToken(input AccessTokenInput) (string, error) {
	if input.ExternalID == "" {
		return "", errors.New("jwt: external id is required")
	}

	now := s.now()
	claims := &Claims{
		Email:          input.Email,
		Name:           input.Name,
		PublicMetadata: PublicMetadata{Role: string(input.Role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.ExternalID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken parses and validates a signed JWT, returning the claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("jwt: missing subject claim")
	}

	return &claims, nil
}

// Verify implements Verifier.
func (s *JWTService) Verify(_ context.Context, token string) (*Identity, error) {
	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Identity{
		ExternalID: claims.Subject,
		Email:      strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:       claims.Name,
		Role:       parseRole(claims.PublicMetadata.Role),
	}, nil
}

func parseRole(raw string) models.UserRole {
	role := models.UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	if role.Valid() {
		return role
	}
	return ""
}
