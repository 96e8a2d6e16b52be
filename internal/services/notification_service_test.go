package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/notifications"
)

func TestNotificationNotifyAndRead(t *testing.T) {
	env := newTestEnv(t)
	svc := env.core.Notifications
	user := env.user("dana@example.com", models.UserRoleStudent)
	other := env.user("eve@example.com", models.UserRoleStudent)

	first, err := svc.Notify(env.ctx, user.UserID, ApplicationReviewed{
		ApplicationID:   "app-1",
		InternshipTitle: "Backend intern",
		Status:          models.ApplicationApproved,
	})
	require.NoError(t, err)
	require.Equal(t, NotificationApplicationReviewed, first.Type)
	require.NotEmpty(t, first.Title)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(first.Metadata, &meta))
	require.Equal(t, "app-1", meta["application_id"])

	_, err = svc.Notify(env.ctx, user.UserID, AssignmentCreated{AssignmentID: "as-1", AssignmentTitle: "CLI"})
	require.NoError(t, err)

	events := env.hub.For(user.UserID)
	require.Len(t, events, 2)
	require.Equal(t, notifications.EventCreated, events[0].Event)

	unread, err := svc.List(env.ctx, user, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	require.ErrorIs(t, svc.MarkRead(env.ctx, other, first.ID), ErrNotificationNotFound)
	require.NoError(t, svc.MarkRead(env.ctx, user, first.ID))
	require.NoError(t, svc.MarkRead(env.ctx, user, first.ID), "marking twice is harmless")

	unread, err = svc.List(env.ctx, user, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	count, err := svc.MarkAllRead(env.ctx, user)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	events = env.hub.For(user.UserID)
	require.Equal(t, notifications.EventReadAll, events[len(events)-1].Event)

	all, err := svc.List(env.ctx, user, false, 1000)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestNotificationNotifyValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.core.Notifications.Notify(env.ctx, "", AssignmentCreated{})
	require.Error(t, err)
	_, err = env.core.Notifications.Notify(env.ctx, "user", nil)
	require.Error(t, err)
}
