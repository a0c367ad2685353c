// Package refreshtokens declares the server-side registry of issued refresh
// tokens, keyed by their jti. A refresh token absent from the registry is
// treated as revoked.
package refreshtokens

import (
	"context"

	"github.com/mori-tea/mori/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find returns common.ErrorNotFound when the jti is unknown or revoked.
	Find(ctx context.Context, id string) (*models.RefreshToken, error)

	// Delete revokes a single token. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired prunes rows whose expiry is in the past.
	DeleteExpired(ctx context.Context) (int64, error)
}
