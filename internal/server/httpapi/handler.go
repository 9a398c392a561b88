// Package httpapi exposes the storage adapter over HTTP for the auth
// framework's server-side callers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"identikit/internal/adapter"
	"identikit/internal/logging"
	"identikit/internal/server/models"
)

// AdapterService defines the adapter operations the HTTP layer depends on.
// Returns domain objects, not HTTP response DTOs.
type AdapterService interface {
	ResolveOrCreateUser(ctx context.Context, ident adapter.ExternalIdentity) (*adapter.ExternalUser, error)
	GetUserByID(ctx context.Context, id string) (*adapter.ExternalUser, error)
	GetUserByEmail(ctx context.Context, email string) (*adapter.ExternalUser, error)
	UpdateUser(ctx context.Context, patch adapter.UserPatch) (*adapter.ExternalUser, error)
	DeleteUser(ctx context.Context, id string) (*adapter.ExternalUser, error)

	LinkAccount(ctx context.Context, account models.Account) (*models.Account, error)
	UnlinkAccount(ctx context.Context, provider, providerAccountID string) error
	GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*adapter.ExternalUser, error)

	CreateSession(ctx context.Context, session models.Session) (*models.Session, error)
	GetSessionWithUser(ctx context.Context, token string) (*adapter.SessionAndUser, error)
	UpdateSession(ctx context.Context, token string, expires time.Time) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error

	CreateVerificationToken(ctx context.Context, token models.VerificationToken) (*models.VerificationToken, error)
	ConsumeVerificationToken(ctx context.Context, identifier, token string) (*models.VerificationToken, error)

	CreateAuthenticator(ctx context.Context, authenticator adapter.Authenticator) (*adapter.Authenticator, error)
	GetAuthenticator(ctx context.Context, credentialID string) (*adapter.Authenticator, error)
	ListAuthenticatorsByUser(ctx context.Context, userID string) ([]*adapter.Authenticator, error)
	UpdateAuthenticatorCounter(ctx context.Context, credentialID string, counter int64) (*adapter.Authenticator, error)

	SafeUpdateUser(ctx context.Context, provider, providerAccountID string, patch adapter.UserPatch) adapter.Acknowledgement
	SafeSignOutUser(ctx context.Context, provider, providerAccountID string) adapter.Acknowledgement
}

// Handler routes adapter operations over HTTP.
type Handler struct {
	service AdapterService
	logger  logging.Logger
}

// NewHandler constructs a Handler over the given adapter service.
func NewHandler(service AdapterService, logger logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the adapter routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/users/resolve", h.HandleResolveUser)
	r.Get("/v1/users", h.HandleGetUserByEmail)
	r.Get("/v1/users/{userID}", h.HandleGetUser)
	r.Patch("/v1/users/{userID}", h.HandleUpdateUser)
	r.Delete("/v1/users/{userID}", h.HandleDeleteUser)
	r.Get("/v1/users/{userID}/authenticators", h.HandleListAuthenticators)

	r.Post("/v1/accounts", h.HandleLinkAccount)
	r.Delete("/v1/accounts/{provider}/{providerAccountID}", h.HandleUnlinkAccount)
	r.Get("/v1/accounts/{provider}/{providerAccountID}/user", h.HandleGetUserByAccount)

	r.Post("/v1/sessions", h.HandleCreateSession)
	r.Get("/v1/sessions/{token}", h.HandleGetSession)
	r.Patch("/v1/sessions/{token}", h.HandleUpdateSession)
	r.Delete("/v1/sessions/{token}", h.HandleDeleteSession)

	r.Post("/v1/verification-tokens", h.HandleCreateVerificationToken)
	r.Post("/v1/verification-tokens/consume", h.HandleConsumeVerificationToken)

	r.Post("/v1/authenticators", h.HandleCreateAuthenticator)
	r.Get("/v1/authenticators/{credentialID}", h.HandleGetAuthenticator)
	r.Patch("/v1/authenticators/{credentialID}/counter", h.HandleUpdateAuthenticatorCounter)

	r.Post("/v1/ops/update-user", h.HandleSafeUpdateUser)
	r.Post("/v1/ops/sign-out", h.HandleSafeSignOut)
}

// HandleResolveUser resolves an external identity to a stored user,
// creating one if necessary.
func (h *Handler) HandleResolveUser(w http.ResponseWriter, r *http.Request) {
	var req resolveUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.ResolveOrCreateUser(r.Context(), adapter.ExternalIdentity{
		ProviderAccountID: req.ProviderAccountID,
		Email:             req.Email,
		Name:              req.Name,
		Image:             req.Image,
		EmailVerified:     req.EmailVerified,
	})
	if err != nil {
		h.logger.Error(r.Context(), "resolve user failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetUser looks up a user by id. A missing user yields 404.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error(r.Context(), "get user failed", "error", err)
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetUserByEmail looks up a user by the email query parameter.
func (h *Handler) HandleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email query parameter is required"})
		return
	}

	user, err := h.service.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error(r.Context(), "get user by email failed", "error", err)
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateUser applies a partial update to the user named in the URL.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch adapter.UserPatch
	if !h.decode(w, r, &patch) {
		return
	}
	patch.ID = chi.URLParam(r, "userID")

	user, err := h.service.UpdateUser(r.Context(), patch)
	if err != nil {
		h.logger.Error(r.Context(), "update user failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteUser deletes a user; linked rows go with it.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error(r.Context(), "delete user failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleLinkAccount records a provider-to-user link.
func (h *Handler) HandleLinkAccount(w http.ResponseWriter, r *http.Request) {
	var req accountPayload
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.service.LinkAccount(r.Context(), req.toModel())
	if err != nil {
		h.logger.Error(r.Context(), "link account failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountFromModel(created))
}

// HandleUnlinkAccount removes a provider link. Unlinking an absent link
// still yields 204.
func (h *Handler) HandleUnlinkAccount(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	providerAccountID := chi.URLParam(r, "providerAccountID")

	if err := h.service.UnlinkAccount(r.Context(), provider, providerAccountID); err != nil {
		h.logger.Error(r.Context(), "unlink account failed", "error", err)
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetUserByAccount resolves the user behind a provider link.
func (h *Handler) HandleGetUserByAccount(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	providerAccountID := chi.URLParam(r, "providerAccountID")

	user, err := h.service.GetUserByAccount(r.Context(), provider, providerAccountID)
	if err != nil {
		h.logger.Error(r.Context(), "get user by account failed", "error", err)
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleCreateSession inserts a new session.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionPayload
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.service.CreateSession(r.Context(), req.toModel())
	if err != nil {
		h.logger.Error(r.Context(), "create session failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionFromModel(created))
}

// HandleGetSession returns the session with the given token joined to its
// user. A missing or unknown token yields 404.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetSessionWithUser(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.logger.Error(r.Context(), "get session failed", "error", err)
		h.writeError(w, err)
		return
	}
	if result == nil {
		h.writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, sessionAndUserResponse{
		Session: sessionFromModel(result.Session),
		User:    result.User,
	})
}

// HandleUpdateSession sets a new expiry on a session.
func (h *Handler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateSession(r.Context(), chi.URLParam(r, "token"), req.Expires)
	if err != nil {
		h.logger.Error(r.Context(), "update session failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionFromModel(updated))
}

// HandleDeleteSession removes a session. Deleting an absent token still
// yields 204.
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "token")); err != nil {
		h.logger.Error(r.Context(), "delete session failed", "error", err)
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateVerificationToken stores a one-time verification token.
func (h *Handler) HandleCreateVerificationToken(w http.ResponseWriter, r *http.Request) {
	var req verificationTokenPayload
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.service.CreateVerificationToken(r.Context(), req.toModel())
	if err != nil {
		h.logger.Error(r.Context(), "create verification token failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, verificationTokenFromModel(created))
}

// HandleConsumeVerificationToken atomically consumes a verification token.
// A missing or already-consumed pair yields 404, not an error.
func (h *Handler) HandleConsumeVerificationToken(w http.ResponseWriter, r *http.Request) {
	var req consumeTokenRequest
	if !h.decode(w, r, &req) {
		return
	}

	consumed, err := h.service.ConsumeVerificationToken(r.Context(), req.Identifier, req.Token)
	if err != nil {
		h.logger.Error(r.Context(), "consume verification token failed", "error", err)
		h.writeError(w, err)
		return
	}
	if consumed == nil {
		h.writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, verificationTokenFromModel(consumed))
}

// HandleCreateAuthenticator registers a passkey credential.
func (h *Handler) HandleCreateAuthenticator(w http.ResponseWriter, r *http.Request) {
	var req adapter.Authenticator
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.service.CreateAuthenticator(r.Context(), req)
	if err != nil {
		h.logger.Error(r.Context(), "create authenticator failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleGetAuthenticator returns a credential by id.
func (h *Handler) HandleGetAuthenticator(w http.ResponseWriter, r *http.Request) {
	authenticator, err := h.service.GetAuthenticator(r.Context(), chi.URLParam(r, "credentialID"))
	if err != nil {
		h.logger.Error(r.Context(), "get authenticator failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authenticator)
}

// HandleListAuthenticators returns every credential registered for a user.
func (h *Handler) HandleListAuthenticators(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAuthenticatorsByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error(r.Context(), "list authenticators failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleUpdateAuthenticatorCounter sets a credential's signature counter.
func (h *Handler) HandleUpdateAuthenticatorCounter(w http.ResponseWriter, r *http.Request) {
	var req updateCounterRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateAuthenticatorCounter(r.Context(), chi.URLParam(r, "credentialID"), req.Counter)
	if err != nil {
		h.logger.Error(r.Context(), "update authenticator counter failed", "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleSafeUpdateUser is the tolerant update entry point: it always
// acknowledges with the status the adapter reports.
func (h *Handler) HandleSafeUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req safeUpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	ack := h.service.SafeUpdateUser(r.Context(), req.Provider, req.ProviderAccountID, adapter.UserPatch{
		Email:         req.Email,
		Name:          req.Name,
		Image:         req.Image,
		EmailVerified: req.EmailVerified,
	})
	writeJSON(w, ack.Status, ack)
}

// HandleSafeSignOut is the tolerant sign-out entry point.
func (h *Handler) HandleSafeSignOut(w http.ResponseWriter, r *http.Request) {
	var req providerLinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	ack := h.service.SafeSignOutUser(r.Context(), req.Provider, req.ProviderAccountID)
	writeJSON(w, ack.Status, ack)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn(r.Context(), "invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError maps adapter failure policies onto HTTP statuses: a hard-fail
// absence is 404, a persistence failure is 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var notFound *adapter.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func (h *Handler) writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
