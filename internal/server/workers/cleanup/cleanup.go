// Package cleanup periodically purges expired sessions and verification
// tokens from storage.
package cleanup

import (
	"context"
	"database/sql"
	"time"

	"identikit/internal/dbx"
	"identikit/internal/logging"
	"identikit/internal/server/metrics"
	"identikit/internal/server/repositories/repomanager"
)

// Result reports what a single cleanup run removed.
type Result struct {
	SessionsDeleted int64
	TokensDeleted   int64
	Duration        time.Duration
}

type Option func(*Service)

func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service deletes expired rows on a fixed interval. Both tables are purged
// inside one transaction so a partial failure leaves storage unchanged.
type Service struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	logger   logging.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

func New(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger, opts ...Option) *Service {
	service := &Service{
		db:       db,
		repos:    repos,
		logger:   logger,
		interval: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Start runs cleanup on the configured interval until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			startTime := time.Now()
			res, err := s.RunOnce(ctx)
			duration := time.Since(startTime)

			if err != nil {
				s.logger.Error(ctx, "cleanup run failed",
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				continue
			}

			res.Duration = duration
			s.logger.Info(ctx, "cleanup run completed",
				"sessions_deleted", res.SessionsDeleted,
				"tokens_deleted", res.TokensDeleted,
				"duration_ms", duration.Milliseconds(),
			)

		case <-ctx.Done():
			s.logger.Info(ctx, "cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single cleanup run. Logging is handled by the caller
// (Start).
func (s *Service) RunOnce(ctx context.Context) (*Result, error) {
	res := &Result{}
	now := time.Now()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repos.Sessions(tx).DeleteExpired(ctx, now)
		if err != nil {
			return err
		}
		res.SessionsDeleted = n

		n, err = s.repos.VerificationTokens(tx).DeleteExpired(ctx, now)
		if err != nil {
			return err
		}
		res.TokensDeleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SessionsDeleted.Add(float64(res.SessionsDeleted))
	}
	return res, nil
}
