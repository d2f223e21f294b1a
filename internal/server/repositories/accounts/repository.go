// Package accounts persists Account rows, the billing/ownership units that
// hold users.
package accounts

import (
	"context"

	"github.com/ivanpetrenko/authgate/internal/server/models"
)

// Repository describes account storage. Implementations return
// common.ErrorNotFound when a lookup matches nothing.
type Repository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByShareCode(ctx context.Context, code string) (*models.Account, error)
}
