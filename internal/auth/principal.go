package auth

import (
	"context"
	"errors"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// ErrInvalidToken is returned by verifiers for any token that cannot be trusted.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is what the hosted identity provider asserts about the bearer of a token.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	// Role is the platform role held in the provider's public metadata, when present.
	Role models.UserRole
}

// Verifier validates a bearer token and returns the asserted identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Principal is the resolved caller passed into every workflow call.
type Principal struct {
	UserID     string
	ExternalID string
	Email      string
	Role       models.UserRole
}

// IsStudent reports whether the caller registered as a student.
func (p *Principal) IsStudent() bool {
	return p != nil && p.Role == models.UserRoleStudent
}

type principalKey struct{}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored on ctx, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
