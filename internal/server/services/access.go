package services

import (
	"slices"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
)

func requireRole(actor auth.Identity, roles ...models.Role) error {
	if actor.Role == models.RoleAdmin || slices.Contains(roles, actor.Role) {
		return nil
	}
	return common.ErrorForbidden
}

// requireCentra lets admins act on any centra and Centra users on their
// own only.
func requireCentra(actor auth.Identity, centraID int64) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCentra:
		if actor.CentraID != nil && *actor.CentraID == centraID {
			return nil
		}
	}
	return common.ErrorForbidden
}

// requireOwner lets admins act on any record and everyone else on records
// they created.
func requireOwner(actor auth.Identity, ownerID int64) error {
	if actor.Role == models.RoleAdmin || actor.UserID == ownerID {
		return nil
	}
	return common.ErrorForbidden
}
