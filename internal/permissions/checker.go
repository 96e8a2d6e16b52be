package permissions

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/metrics"
)

// Checker evaluates company permissions for users. It fails closed.
type Checker struct {
	resolver Resolver
}

// NewChecker constructs a permission checker backed by the provided resolver.
func NewChecker(resolver Resolver) (*Checker, error) {
	if resolver == nil {
		return nil, errors.New("permission checker: resolver is required")
	}
	return &Checker{resolver: resolver}, nil
}

// Check reports whether userID holds permission within companyID. A missing membership, a
// membership in another company and an unknown permission all deny without error. Any other
// lookup failure is returned.
func (c *Checker) Check(ctx context.Context, userID, companyID string, permission Permission) (bool, error) {
	if userID == "" || companyID == "" || !IsKnown(permission) {
		metrics.PermissionChecks.WithLabelValues(string(permission), "denied").Inc()
		return false, nil
	}

	snap, err := c.resolver.Resolve(ctx, userID)
	switch {
	case errors.Is(err, ErrNoMembership):
		metrics.PermissionChecks.WithLabelValues(string(permission), "denied").Inc()
		return false, nil
	case err != nil:
		metrics.PermissionChecks.WithLabelValues(string(permission), "error").Inc()
		return false, err
	}

	if snap.CompanyID != companyID || !snap.Set().Has(permission) {
		metrics.PermissionChecks.WithLabelValues(string(permission), "denied").Inc()
		return false, nil
	}

	metrics.PermissionChecks.WithLabelValues(string(permission), "allowed").Inc()
	return true, nil
}

// Require is Check expressed as an error: PermissionDenied when the check fails, Internal when
// the lookup itself fails.
func (c *Checker) Require(ctx context.Context, userID, companyID string, permission Permission) error {
	ok, err := c.Check(ctx, userID, companyID, permission)
	if err != nil {
		return apperrors.ErrInternal.WithInternal(err)
	}
	if !ok {
		return apperrors.ErrPermissionDenied.WithMessage(fmt.Sprintf("Missing permission %s", permission))
	}
	return nil
}

// Snapshot returns the caller's active membership snapshot, or ErrNoMembership.
func (c *Checker) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	return c.resolver.Resolve(ctx, userID)
}
