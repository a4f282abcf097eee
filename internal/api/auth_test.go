package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/session"
)

func newAuthFixture(t *testing.T, handler http.HandlerFunc) (*Auth, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.New("", nil, nil)
	client := NewClient(srv.URL, 0, sess, nil)
	return NewAuth(client, sess, nil), sess
}

func TestLoginSuccess(t *testing.T) {
	auth, sess := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"token":"opaque-1"}`)
	})

	require.NoError(t, auth.Login(context.Background(), "alice", "pw"))
	assert.Equal(t, "opaque-1", sess.Token())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	bodies := map[string]string{
		"success false":         `{"success":false,"message":"wrong password"}`,
		"bare success false":    `{"success":false}`,
		"missing token":         `{"success":true}`,
		"missing token message": `{"success":true,"message":"Login successful"}`,
		"empty token":           `{"success":true,"token":""}`,
		"rejected by 401":       ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			auth, sess := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
				if body == "" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				_, _ = io.WriteString(w, body)
			})

			err := auth.Login(context.Background(), "alice", "bad")
			require.ErrorIs(t, err, ErrLoginFailed)
			assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
			assert.Equal(t, LoginRejectedMessage, apperr.Message(err))
			assert.False(t, sess.Authenticated())
		})
	}
}

func TestLogoutClearsEvenOnFailure(t *testing.T) {
	var authHeader string
	auth, sess := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusBadGateway)
	})
	require.NoError(t, sess.Establish("tok"))

	err := auth.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Bearer tok", authHeader)
	assert.False(t, sess.Authenticated())
}

func TestLogoutWithoutSessionIsNoop(t *testing.T) {
	called := false
	auth, _ := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	require.NoError(t, auth.Logout(context.Background()))
	assert.False(t, called)
}
