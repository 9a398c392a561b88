package sessions

import (
	"context"
	"time"

	"identikit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	GetWithUser(ctx context.Context, token string) (*models.Session, *models.User, error)
	Update(ctx context.Context, token string, expires time.Time) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
