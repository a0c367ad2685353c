package services

import (
	"context"
	"testing"
	"time"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMachine(t *testing.T) {
	f, _ := newStatusFixture(t)

	m, err := f.svc.CreateMachine(context.Background(), centraUser, models.MachineFlouring, " F2 ", 3, 40)
	require.NoError(t, err)
	assert.Equal(t, "F2", m.ID)
	assert.Equal(t, models.MachineIdle, m.Status)

	_, err = f.svc.CreateMachine(context.Background(), centraUser, models.MachineFlouring, "F2", 3, 40)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = f.svc.CreateMachine(context.Background(), centraUser, models.MachineFlouring, "F3", 5, 40)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = f.svc.CreateMachine(context.Background(), xyzUser, models.MachineDrying, "D9", 3, 40)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = f.svc.CreateMachine(context.Background(), admin, "oven", "O1", 3, 40)
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = f.svc.CreateMachine(context.Background(), admin, models.MachineDrying, "", 3, 40)
	assert.ErrorIs(t, err, common.ErrorValidation)

	assert.Empty(t, f.rm.notifications.items, "creation is not a status change")
}

func TestCreateExpedition(t *testing.T) {
	f, _ := newStatusFixture(t)
	eta := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	e, err := f.svc.CreateExpedition(context.Background(), admin, 3, "Harbour Bitung", 12, "reefer", &eta)
	require.NoError(t, err)
	assert.Equal(t, models.ExpeditionPkgDelivering, e.Status)
	assert.Equal(t, &eta, e.EstimatedArrival)

	_, err = f.svc.CreateExpedition(context.Background(), centraUser, 3, "", 12, "", nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = f.svc.CreateExpedition(context.Background(), centraUser, 3, "Bitung", 0, "", nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = f.svc.CreateExpedition(context.Background(), otherCentra, 3, "Bitung", 1, "", nil)
	assert.ErrorIs(t, err, common.ErrorForbidden)
}
