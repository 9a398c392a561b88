package adapter

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"identikit/internal/common"
	"identikit/internal/dbx"
	"identikit/internal/logging"
	"identikit/internal/server/models"
	"identikit/internal/server/repositories/accounts"
	"identikit/internal/server/repositories/authenticators"
	"identikit/internal/server/repositories/repomanager"
	"identikit/internal/server/repositories/sessions"
	"identikit/internal/server/repositories/users"
	"identikit/internal/server/repositories/verificationtokens"
)

// --- in-memory fakes, one per repository interface ---

type fakeUsersRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User

	createErr error

	emailLookups int
	idLookups    int
	creates      int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byID:    map[string]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byID[u.ID] = u
	if u.Email != nil {
		f.byEmail[*u.Email] = u
	}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byID[u.ID]; ok {
		return nil, common.ErrorDuplicate
	}
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.idLookups++
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.emailLookups++
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byID[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.byID, id)
	if u.Email != nil {
		delete(f.byEmail, *u.Email)
	}
	return u, nil
}

type fakeSessionsRepo struct {
	byToken map[string]*models.Session
	users   *fakeUsersRepo

	deleteAllCalls int
}

func newFakeSessionsRepo(users *fakeUsersRepo) *fakeSessionsRepo {
	return &fakeSessionsRepo{byToken: map[string]*models.Session{}, users: users}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	f.byToken[s.SessionToken] = s
	return s, nil
}

func (f *fakeSessionsRepo) GetWithUser(ctx context.Context, token string) (*models.Session, *models.User, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, nil, common.ErrorNotFound
	}
	u, ok := f.users.byID[s.UserID]
	if !ok {
		return nil, nil, common.ErrorNotFound
	}
	return s, u, nil
}

func (f *fakeSessionsRepo) Update(ctx context.Context, token string, expires time.Time) (*models.Session, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	s.Expires = expires
	return s, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessionsRepo) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	f.deleteAllCalls++
	var n int64
	for token, s := range f.byToken {
		if s.UserID == userID {
			delete(f.byToken, token)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for token, s := range f.byToken {
		if !s.Expires.After(now) {
			delete(f.byToken, token)
			n++
		}
	}
	return n, nil
}

type accountKey struct{ provider, id string }

type fakeAccountsRepo struct {
	byKey map[accountKey]*models.Account
	users *fakeUsersRepo
}

func newFakeAccountsRepo(users *fakeUsersRepo) *fakeAccountsRepo {
	return &fakeAccountsRepo{byKey: map[accountKey]*models.Account{}, users: users}
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	k := accountKey{a.Provider, a.ProviderAccountID}
	if _, ok := f.byKey[k]; ok {
		return nil, common.ErrorDuplicate
	}
	f.byKey[k] = a
	return a, nil
}

func (f *fakeAccountsRepo) Delete(ctx context.Context, provider, providerAccountID string) error {
	delete(f.byKey, accountKey{provider, providerAccountID})
	return nil
}

func (f *fakeAccountsRepo) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*models.User, error) {
	a, ok := f.byKey[accountKey{provider, providerAccountID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u, ok := f.users.byID[a.UserID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeAuthenticatorsRepo struct {
	byCredentialID map[string]*models.Authenticator
}

func newFakeAuthenticatorsRepo() *fakeAuthenticatorsRepo {
	return &fakeAuthenticatorsRepo{byCredentialID: map[string]*models.Authenticator{}}
}

func (f *fakeAuthenticatorsRepo) Create(ctx context.Context, a *models.Authenticator) (*models.Authenticator, error) {
	f.byCredentialID[a.CredentialID] = a
	return a, nil
}

func (f *fakeAuthenticatorsRepo) GetByCredentialID(ctx context.Context, credentialID string) (*models.Authenticator, error) {
	a, ok := f.byCredentialID[credentialID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAuthenticatorsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Authenticator, error) {
	var list []*models.Authenticator
	for _, a := range f.byCredentialID {
		if a.UserID == userID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (f *fakeAuthenticatorsRepo) UpdateCounter(ctx context.Context, credentialID string, counter int64) (*models.Authenticator, error) {
	a, ok := f.byCredentialID[credentialID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a.Counter = counter
	return a, nil
}

type tokenKey struct{ identifier, token string }

type fakeVerificationTokensRepo struct {
	byKey map[tokenKey]*models.VerificationToken
}

func newFakeVerificationTokensRepo() *fakeVerificationTokensRepo {
	return &fakeVerificationTokensRepo{byKey: map[tokenKey]*models.VerificationToken{}}
}

func (f *fakeVerificationTokensRepo) Create(ctx context.Context, t *models.VerificationToken) (*models.VerificationToken, error) {
	f.byKey[tokenKey{t.Identifier, t.Token}] = t
	return t, nil
}

func (f *fakeVerificationTokensRepo) Consume(ctx context.Context, identifier, token string) (*models.VerificationToken, error) {
	k := tokenKey{identifier, token}
	t, ok := f.byKey[k]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.byKey, k)
	return t, nil
}

func (f *fakeVerificationTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.byKey {
		if !t.Expires.After(now) {
			delete(f.byKey, k)
			n++
		}
	}
	return n, nil
}

// fakeRepoManager vends the fakes above regardless of the DBTX it is given.
type fakeRepoManager struct {
	users              *fakeUsersRepo
	accounts           *fakeAccountsRepo
	sessions           *fakeSessionsRepo
	authenticators     *fakeAuthenticatorsRepo
	verificationTokens *fakeVerificationTokensRepo
}

func newFakeRepoManager() *fakeRepoManager {
	u := newFakeUsersRepo()
	return &fakeRepoManager{
		users:              u,
		accounts:           newFakeAccountsRepo(u),
		sessions:           newFakeSessionsRepo(u),
		authenticators:     newFakeAuthenticatorsRepo(),
		verificationTokens: newFakeVerificationTokensRepo(),
	}
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository {
	return m.accounts
}

func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository {
	return m.sessions
}

func (m *fakeRepoManager) Authenticators(db dbx.DBTX) authenticators.Repository {
	return m.authenticators
}

func (m *fakeRepoManager) VerificationTokens(db dbx.DBTX) verificationtokens.Repository {
	return m.verificationTokens
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// captureLogger records log calls for assertions on the tolerant operations.
type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (c *captureLogger) record(level, msg string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, logEntry{level: level, msg: msg, args: args})
}

func (c *captureLogger) Info(ctx context.Context, msg string, args ...any) {
	c.record("info", msg, args)
}

func (c *captureLogger) Warn(ctx context.Context, msg string, args ...any) {
	c.record("warn", msg, args)
}

func (c *captureLogger) Error(ctx context.Context, msg string, args ...any) {
	c.record("error", msg, args)
}

func (c *captureLogger) With(args ...any) logging.Logger { return c }

func (c *captureLogger) has(level, msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

// newTestAdapter wires an Adapter to fakes; the *sql.DB is never touched.
func newTestAdapter() (*Adapter, *fakeRepoManager, *captureLogger) {
	rm := newFakeRepoManager()
	log := &captureLogger{}
	return New(nil, rm, log, nil), rm, log
}

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }
