package services

import (
	"context"
	"testing"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(t *testing.T) (*NotificationService, *fakeRepoManager) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.notifications.items = []*models.Notification{
		{ID: 1, CentraID: 3, Message: "Drying machine M1 is now running"},
		{ID: 2, CentraID: 3, Message: "Drying machine M1 is now finished", IsRead: true},
		{ID: 3, CentraID: 5, Message: "Expedition 9 status changed to Missing"},
	}
	return NewNotificationService(db, rm), rm
}

func TestListNotifications_CentraDefaultsToOwn(t *testing.T) {
	svc, rm := newNotificationFixture(t)

	got, err := svc.ListNotifications(context.Background(), centraUser, 0, false, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []any{int64(3), false, DefaultNotificationLimit}, rm.notifications.listArgs)

	got, err = svc.ListNotifications(context.Background(), centraUser, 3, true, 1000)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []any{int64(3), true, MaxNotificationLimit}, rm.notifications.listArgs)
}

func TestListNotifications_Access(t *testing.T) {
	svc, _ := newNotificationFixture(t)

	_, err := svc.ListNotifications(context.Background(), centraUser, 5, false, 10)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = svc.ListNotifications(context.Background(), admin, 0, false, 10)
	assert.ErrorIs(t, err, common.ErrorValidation, "admins must name a centra")

	got, err := svc.ListNotifications(context.Background(), admin, 5, false, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListNotifications(context.Background(), xyzUser, 3, false, 10)
	assert.ErrorIs(t, err, common.ErrorForbidden)
}

func TestMarkNotificationRead(t *testing.T) {
	svc, rm := newNotificationFixture(t)

	require.NoError(t, svc.MarkNotificationRead(context.Background(), centraUser, 1))
	assert.True(t, rm.notifications.items[0].IsRead)

	require.NoError(t, svc.MarkNotificationRead(context.Background(), centraUser, 2), "already read is fine")

	assert.ErrorIs(t, svc.MarkNotificationRead(context.Background(), centraUser, 3), common.ErrorForbidden)
	assert.False(t, rm.notifications.items[2].IsRead)

	assert.ErrorIs(t, svc.MarkNotificationRead(context.Background(), admin, 99), common.ErrorNotFound)
}
