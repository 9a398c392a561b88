package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"identikit/internal/server/models"
)

func TestCreateSession_ThenGetWithUser(t *testing.T) {
	a, rm, _ := newTestAdapter()
	rm.users.add(&models.User{ID: "u1", Email: strptr("a@example.com")})

	expires := time.Now().Add(time.Hour)
	created, err := a.CreateSession(context.Background(), models.Session{
		SessionToken: "tok-1",
		UserID:       "u1",
		Expires:      expires,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", created.SessionToken)

	got, err := a.GetSessionWithUser(context.Background(), "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "tok-1", got.Session.SessionToken)
	assert.Equal(t, "u1", got.Session.UserID)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "a@example.com", *got.User.Email)
}

func TestGetSessionWithUser_MissingToken_ReturnsNil(t *testing.T) {
	a, _, _ := newTestAdapter()

	got, err := a.GetSessionWithUser(context.Background(), "ghost")
	require.NoError(t, err, "a missing token must not raise")
	assert.Nil(t, got)
}

func TestUpdateSession_ExtendsExpiry(t *testing.T) {
	a, rm, _ := newTestAdapter()
	rm.users.add(&models.User{ID: "u1"})
	rm.sessions.byToken["tok-1"] = &models.Session{SessionToken: "tok-1", UserID: "u1", Expires: time.Now()}

	expires := time.Now().Add(24 * time.Hour)
	updated, err := a.UpdateSession(context.Background(), "tok-1", expires)
	require.NoError(t, err)
	assert.Equal(t, expires, updated.Expires)
}

func TestUpdateSession_MissingToken(t *testing.T) {
	a, _, _ := newTestAdapter()

	_, err := a.UpdateSession(context.Background(), "ghost", time.Now())
	require.Error(t, err)

	var pe *PersistenceError
	assert.ErrorAs(t, err, &pe)
}

func TestDeleteSession_Idempotent(t *testing.T) {
	a, rm, _ := newTestAdapter()
	rm.users.add(&models.User{ID: "u1"})
	rm.sessions.byToken["tok-1"] = &models.Session{SessionToken: "tok-1", UserID: "u1"}

	require.NoError(t, a.DeleteSession(context.Background(), "tok-1"))
	require.NoError(t, a.DeleteSession(context.Background(), "tok-1"), "deleting an absent token is not an error")
}
