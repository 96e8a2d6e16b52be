package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
)

func TestUserProvision(t *testing.T) {
	env := newTestEnv(t)
	svc, err := NewUserService(env.core)
	require.NoError(t, err)

	user, err := svc.Provision(env.ctx, &auth.Identity{ExternalID: "user_1", Email: " Dana@Example.com ", Name: "Dana"})
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", user.Email)
	require.Empty(t, user.Role)
	require.False(t, user.OnboardingComplete)

	again, err := svc.Provision(env.ctx, &auth.Identity{ExternalID: "user_1", Email: "dana@example.com", Name: "Dana Scully", Role: models.UserRoleStudent})
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
	require.Equal(t, "Dana Scully", again.Name)
	require.Equal(t, models.UserRoleStudent, again.Role)

	_, err = svc.Provision(env.ctx, &auth.Identity{ExternalID: "user_2", Email: "dana@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Provision(env.ctx, &auth.Identity{ExternalID: "user_3"})
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = svc.Provision(env.ctx, nil)
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestUserCompleteOnboarding(t *testing.T) {
	env := newTestEnv(t)
	svc, err := NewUserService(env.core)
	require.NoError(t, err)

	p := env.user("new@example.com", "")
	_, err = svc.CompleteOnboarding(env.ctx, p, models.UserRoleTeamMember)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	user, err := svc.CompleteOnboarding(env.ctx, p, models.UserRoleStudent)
	require.NoError(t, err)
	require.Equal(t, models.UserRoleStudent, user.Role)
	require.True(t, user.OnboardingComplete)

	_, err = svc.CompleteOnboarding(env.ctx, p, models.UserRoleCompany)
	require.ErrorIs(t, err, ErrOnboardingComplete)

	me, err := svc.Me(env.ctx, p)
	require.NoError(t, err)
	require.Equal(t, models.UserRoleStudent, me.Role)

	_, err = svc.Me(env.ctx, nil)
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
