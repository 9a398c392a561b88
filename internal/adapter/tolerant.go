package adapter

import (
	"context"
	"net/http"
)

// Acknowledgement is the uniform result envelope of the tolerant operations.
// Status is a caller-facing acknowledgment, not a success/failure signal:
// it is 200 whether or not the target user resolved.
type Acknowledgement struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// SafeUpdateUser resolves the user behind the given provider link and, if
// found, applies patch through the user update path. A missing user is an
// expected, loggable condition: the operation degrades to a no-op with a
// warning and never fails the caller.
func (a *Adapter) SafeUpdateUser(ctx context.Context, provider, providerAccountID string, patch UserPatch) Acknowledgement {
	user, err := a.GetUserByAccount(ctx, provider, providerAccountID)
	if err != nil || user == nil {
		a.log.Warn(ctx, "no user was found",
			"provider", provider, "providerAccountId", providerAccountID)
		return Acknowledgement{Status: http.StatusOK, Message: "no user was found"}
	}

	a.log.Info(ctx, "updating user", "userId", user.ID)

	patch.ID = user.ID
	if _, err := a.UpdateUser(ctx, patch); err != nil {
		a.log.Warn(ctx, "user update failed", "userId", user.ID, "error", err)
		return Acknowledgement{Status: http.StatusOK, Message: "user update failed"}
	}
	return Acknowledgement{Status: http.StatusOK, Message: "user updated"}
}

// SafeSignOutUser resolves the user behind the given provider link and, if
// found, deletes every session belonging to that user. Like SafeUpdateUser,
// it never fails the caller.
func (a *Adapter) SafeSignOutUser(ctx context.Context, provider, providerAccountID string) Acknowledgement {
	user, err := a.GetUserByAccount(ctx, provider, providerAccountID)
	if err != nil || user == nil {
		a.log.Warn(ctx, "no user was found",
			"provider", provider, "providerAccountId", providerAccountID)
		return Acknowledgement{Status: http.StatusOK, Message: "no user was found"}
	}

	a.log.Info(ctx, "Signing out user", "userId", user.ID)

	deleted, err := a.repos.Sessions(a.db).DeleteAllForUser(ctx, user.ID)
	if err != nil {
		a.log.Warn(ctx, "sign-out failed", "userId", user.ID, "error", err)
		return Acknowledgement{Status: http.StatusOK, Message: "sign-out failed"}
	}
	if a.metrics != nil {
		a.metrics.SessionsDeleted.Add(float64(deleted))
	}
	return Acknowledgement{Status: http.StatusOK, Message: "user signed out"}
}
