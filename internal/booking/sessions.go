package booking

import (
	"log/slog"

	"github.com/sakif/railbook/internal/auth"
	"github.com/sakif/railbook/internal/directory"
	"github.com/sakif/railbook/internal/model"
	"github.com/sakif/railbook/internal/store"
)

// Sessions creates Session values bound to the loaded directories.
//
// The HTTP front-end is stateless, so each request builds a fresh Session:
// anonymous for the auth endpoints, pre-bound via ForUser once the token
// middleware has identified the caller. A CLI front-end would instead hold
// one Session for its whole run.
type Sessions struct {
	users  *directory.UserDirectory
	authn  auth.Authenticator
	userSt store.Store[model.User]
	logger *slog.Logger
}

// NewSessions wires the factory.
func NewSessions(
	users *directory.UserDirectory,
	authn auth.Authenticator,
	userStore store.Store[model.User],
	logger *slog.Logger,
) *Sessions {
	return &Sessions{users: users, authn: authn, userSt: userStore, logger: logger}
}

// New returns an unbound (anonymous) session.
func (f *Sessions) New() *Session {
	return NewSession(f.users, f.authn, f.userSt, f.logger)
}

// ForUser returns a session already bound to the user with the given ID.
func (f *Sessions) ForUser(userID string) (*Session, error) {
	s := f.New()
	if err := s.Bind(userID); err != nil {
		return nil, err
	}
	return s, nil
}
