package accounts

import (
	"context"

	"identikit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, provider, providerAccountID string) error
	GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*models.User, error)
}
