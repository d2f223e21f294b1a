package services

import (
	"context"
	"time"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/randx"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/tokens"
)

const refTokenIDBytes = 32

// issueRefToken mints an opaque reference token for the user and persists it
// on the given handle, which may be a live transaction. Issuing never revokes
// the user's older tokens.
func issueRefToken(ctx context.Context, repo tokens.Repository, rnd randx.Source, user *models.User, validity time.Duration) (*models.RefToken, error) {
	id, err := rnd.Hex(refTokenIDBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	now := time.Now()
	token := &models.RefToken{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		AccountID: user.AccountID,
		ExpiresAt: now.Add(validity),
		CreatedAt: now,
	}
	if err := repo.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}
