// Package urltokens stores the single-use tokens behind set-password links.
package urltokens

import (
	"context"

	"github.com/mori-tea/mori/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.URLToken) error
	// Find returns common.ErrorNotFound for unknown values.
	Find(ctx context.Context, value string) (*models.URLToken, error)
	Delete(ctx context.Context, value string) error
}
