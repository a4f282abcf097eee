package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/session"
)

// ErrLoginFailed is the cause of every rejected login, whether the backend
// said success:false or omitted the token.
var ErrLoginFailed = errors.New("login failed")

// LoginRejectedMessage is the message of every rejected login.
const LoginRejectedMessage = "invalid username or password"

// Auth runs the login and logout exchanges and keeps the session in step.
type Auth struct {
	doer    Doer
	session *session.Session
	logger  *slog.Logger
}

// NewAuth creates an Auth bound to a session.
func NewAuth(doer Doer, sess *session.Session, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{doer: doer, session: sess, logger: logger}
}

// Login authenticates and establishes the session. It succeeds only when the
// backend reports success and returns a non-empty token.
func (a *Auth) Login(ctx context.Context, username, password string) error {
	resp, err := a.doer.Do(ctx, Login(username, password))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindBackend {
			a.logger.Warn("login rejected", "user", username, "error", err)
			return loginRejected()
		}
		return err
	}

	token := resp.Envelope.Text("token")
	if token == "" {
		a.logger.Warn("login response carried no token", "user", username, "message", resp.Envelope.Message)
		return loginRejected()
	}
	if err := a.session.Establish(token); err != nil {
		return &apperr.Error{Kind: apperr.KindBackend, Message: "backend issued an unusable token", Cause: err}
	}
	return nil
}

// Logout tells the backend to end the session and clears it locally. The
// local session is cleared even when the backend call fails.
func (a *Auth) Logout(ctx context.Context) error {
	if !a.session.Authenticated() {
		return nil
	}
	_, err := a.doer.Do(ctx, Logout())
	a.session.Clear()
	if err != nil {
		a.logger.Warn("logout call failed", "error", err)
	}
	return err
}

// loginRejected is the one failure every rejected login reports. The
// backend's wording is logged, never shown.
func loginRejected() error {
	return &apperr.Error{Kind: apperr.KindBackend, Message: LoginRejectedMessage, Cause: ErrLoginFailed}
}
