package repomanager

import (
	"context"
	"database/sql"

	"identikit/internal/dbx"
	"identikit/internal/server/repositories/accounts"
	"identikit/internal/server/repositories/authenticators"
	"identikit/internal/server/repositories/sessions"
	"identikit/internal/server/repositories/users"
	"identikit/internal/server/repositories/verificationtokens"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// repository code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Authenticators(db dbx.DBTX) authenticators.Repository
	VerificationTokens(db dbx.DBTX) verificationtokens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
