package auth

import (
	"fmt"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/models"
)

// ResolveCentra picks the centra the identity reads data for. Centra users
// default to their own centra and may not name another; admins must name
// one. Other roles have no centra.
func (id Identity) ResolveCentra(requested int64) (int64, error) {
	switch id.Role {
	case models.RoleAdmin:
		if requested <= 0 {
			return 0, fmt.Errorf("%w: centra id is required", common.ErrorValidation)
		}
		return requested, nil
	case models.RoleCentra:
		if id.CentraID == nil {
			return 0, common.ErrorForbidden
		}
		if requested != 0 && requested != *id.CentraID {
			return 0, common.ErrorForbidden
		}
		return *id.CentraID, nil
	}
	return 0, common.ErrorForbidden
}
