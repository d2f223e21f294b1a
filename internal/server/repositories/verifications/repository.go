// Package verifications persists the outstanding one-time verification
// codes, keyed by contact string.
package verifications

import (
	"context"

	"github.com/ivanpetrenko/authgate/internal/server/models"
)

// Repository describes verification-request storage. Implementations return
// common.ErrorNotFound when a lookup matches nothing.
type Repository interface {
	// Upsert writes the request for its contact, replacing any outstanding
	// code for the same contact.
	Upsert(ctx context.Context, request *models.VerificationRequest) error

	Find(ctx context.Context, contact string) (*models.VerificationRequest, error)
}
