package verificationtokens

import (
	"context"
	"time"

	"identikit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.VerificationToken) (*models.VerificationToken, error)
	Consume(ctx context.Context, identifier, token string) (*models.VerificationToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
