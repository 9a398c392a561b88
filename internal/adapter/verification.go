package adapter

import (
	"context"
	"errors"
	"fmt"

	"identikit/internal/common"
	"identikit/internal/server/models"
)

// CreateVerificationToken inserts a one-time verification token and returns
// the persisted row.
func (a *Adapter) CreateVerificationToken(ctx context.Context, token models.VerificationToken) (*models.VerificationToken, error) {
	created, err := a.repos.VerificationTokens(a.db).Create(ctx, &token)
	if err != nil {
		a.countError("create_verification_token")
		return nil, fmt.Errorf("error creating verification token: %w", err)
	}
	return created, nil
}

// ConsumeVerificationToken atomically deletes the row matching both fields
// and returns it. Consuming a non-existent pair returns nil, not an error,
// so the second of two racing consumers observes plain absence.
func (a *Adapter) ConsumeVerificationToken(ctx context.Context, identifier, token string) (*models.VerificationToken, error) {
	consumed, err := a.repos.VerificationTokens(a.db).Consume(ctx, identifier, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		a.countError("consume_verification_token")
		return nil, fmt.Errorf("error consuming verification token: %w", err)
	}
	if a.metrics != nil {
		a.metrics.TokensConsumed.Inc()
	}
	return consumed, nil
}
