// Package adapter translates the authentication framework's
// provider-agnostic identity/session/credential model into rows of the
// relational user store, and back.
//
// Every operation is one logical unit of work against the shared database
// handle; atomicity is delegated to single-statement guarantees of the
// storage layer. The adapter holds no state beyond the handle reference.
//
// Three failure policies coexist:
//   - hard-fail-on-absence: operations the framework only calls when it
//     already believes the entity exists return *NotFoundError or
//     *PersistenceError with fixed message strings;
//   - soft-absence: speculative reads return (nil, nil) when the target
//     does not exist;
//   - tolerant envelope: SafeUpdateUser and SafeSignOutUser never fail the
//     caller and always return an Acknowledgement.
package adapter

import (
	"database/sql"

	"identikit/internal/logging"
	"identikit/internal/server/metrics"
	"identikit/internal/server/repositories/repomanager"
)

// Adapter is the single point translating between the framework and the
// user store. Construct with New; the *sql.DB is borrowed, not owned.
type Adapter struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	log     logging.Logger
	metrics *metrics.Metrics
}

// New constructs an Adapter. metrics may be nil; recording is then skipped.
func New(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger, m *metrics.Metrics) *Adapter {
	return &Adapter{db: db, repos: repos, log: log, metrics: m}
}

func (a *Adapter) countError(operation string) {
	if a.metrics != nil {
		a.metrics.OperationErrors.WithLabelValues(operation).Inc()
	}
}
