package authenticators

import (
	"context"

	"identikit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, authenticator *models.Authenticator) (*models.Authenticator, error)
	GetByCredentialID(ctx context.Context, credentialID string) (*models.Authenticator, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Authenticator, error)
	UpdateCounter(ctx context.Context, credentialID string, counter int64) (*models.Authenticator, error)
}
