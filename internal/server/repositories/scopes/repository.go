// Package scopes resolves the tenant a user currently acts for: the centra
// of a Centra user or the warehouse of an XYZ user.
package scopes

import "context"

type Repository interface {
	// CentraForUser returns the centra from the user's most recent active
	// assignment, or common.ErrorNotFound.
	CentraForUser(ctx context.Context, userID int64) (int64, error)
	WarehouseForUser(ctx context.Context, userID int64) (int64, error)
	// AssignCentra records a new active assignment. An unknown centra yields
	// common.ErrorNotFound.
	AssignCentra(ctx context.Context, userID, centraID int64) error
	AssignWarehouse(ctx context.Context, userID, warehouseID int64) error
}
