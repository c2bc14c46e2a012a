// Package booking contains the business logic layer of the service: the
// Session that scopes operations to one authenticated user, and the Engine
// that runs the booking and cancellation flows.
//
// THE DEPENDENCY CHAIN:
//
//	main.go creates:  Store → directories → Session/Engine → handlers
//	At runtime:       handler calls Engine, Engine consults directories,
//	                  mutates the user's ticket list, asks the Store to
//	                  persist the user collection.
//
// Neither type knows anything about HTTP; the handlers translate. Every
// user-scoped operation takes the Session explicitly rather than relying on
// process-wide state, which keeps multi-session tests trivial and lets the
// HTTP layer build a short-lived Session per request.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/railbook/internal/apperror"
	"github.com/sakif/railbook/internal/auth"
	"github.com/sakif/railbook/internal/directory"
	"github.com/sakif/railbook/internal/model"
	"github.com/sakif/railbook/internal/store"
)

// Session binds operations to one authenticated user at a time (or none).
// It gates every user-scoped operation through RequireLogin.
type Session struct {
	users   *directory.UserDirectory
	authn   auth.Authenticator
	userSt  store.Store[model.User]
	logger  *slog.Logger
	current *model.User
}

// NewSession creates an unbound session. Login or Bind attaches a user.
func NewSession(
	users *directory.UserDirectory,
	authn auth.Authenticator,
	userStore store.Store[model.User],
	logger *slog.Logger,
) *Session {
	return &Session{
		users:  users,
		authn:  authn,
		userSt: userStore,
		logger: logger,
	}
}

// SignUp registers a new account.
//
// Rules:
//   - name and credential must be non-blank after trimming
//   - the name must be free, compared case-insensitively ("Alice" taken
//     means "alice" is rejected too)
//   - the credential is stored through the Authenticator (bcrypt by default)
//   - the user collection is persisted before returning
//
// SignUp does not log the new user in.
func (s *Session) SignUp(ctx context.Context, name, credential string) error {
	name = strings.TrimSpace(name)
	missing := []string{}
	if name == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(credential) == "" {
		missing = append(missing, "credential")
	}
	if len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}

	if s.users.NameTaken(name) {
		return apperror.Conflict("user", name)
	}

	stored, err := s.authn.Hash(credential)
	if err != nil {
		return apperror.ValidationFailed("credential", err.Error())
	}

	u := model.User{
		ID:         xid.New().String(),
		Name:       name,
		Credential: stored,
		Tickets:    []model.Ticket{},
	}
	s.users.Add(u)

	if err := s.userSt.Save(ctx, s.users.All()); err != nil {
		s.logger.Error("failed to persist users after signup",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return apperror.Persistence("users", err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", u.ID),
		slog.String("name", u.Name),
	)
	return nil
}

// Login authenticates and binds a user to the session.
//
// FAIL CLOSED:
// An unknown name and a wrong credential produce the same InvalidCredentials
// error, and a failed login leaves any previously bound user untouched.
// Name matching is case-sensitive — the signup-time uniqueness check is the
// only case-insensitive comparison.
func (s *Session) Login(ctx context.Context, name, credential string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(credential) == "" {
		return apperror.InvalidCredentials()
	}

	u, ok := s.users.FindByName(name)
	if !ok {
		return apperror.InvalidCredentials()
	}

	if err := s.authn.Verify(u.Credential, strings.TrimSpace(credential)); err != nil {
		if errors.Is(err, auth.ErrCredentialMismatch) {
			return apperror.InvalidCredentials()
		}
		s.logger.Error("credential verification failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return apperror.InvalidCredentials()
	}

	s.current = u
	s.logger.Info("user logged in",
		slog.String("userID", u.ID),
		slog.String("name", u.Name),
	)
	return nil
}

// Bind attaches the user with the given ID to the session without a
// credential check. The HTTP layer uses this after the auth middleware has
// already validated the session token.
func (s *Session) Bind(userID string) error {
	u, ok := s.users.FindByID(userID)
	if !ok {
		return apperror.NotFound("user", userID)
	}
	s.current = u
	return nil
}

// Logout unbinds the current user, if any.
func (s *Session) Logout() {
	s.current = nil
}

// CurrentUser returns the bound user, or nil for an anonymous session.
func (s *Session) CurrentUser() *model.User {
	return s.current
}

// RequireLogin returns the bound user or a NotAuthenticated error. Every
// user-scoped operation calls this first.
func (s *Session) RequireLogin() (*model.User, error) {
	if s.current == nil {
		return nil, apperror.NotAuthenticated()
	}
	return s.current, nil
}
