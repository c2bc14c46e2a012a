// Package handler contains the HTTP layer: it parses requests, calls the
// booking layer, and writes responses. No business rules live here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/railbook/internal/apperror"
	"github.com/sakif/railbook/internal/auth"
	"github.com/sakif/railbook/internal/booking"
)

// AuthHandler serves signup, login, logout, and the current-user endpoint.
//
// Login issues a JWT in an HttpOnly cookie named "token"; the auth
// middleware validates it on protected routes. Logout just expires the
// cookie — the token itself stays valid until its expiry, which is fine for
// a 12 hour lifetime.
type AuthHandler struct {
	sessions *booking.Sessions
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions *booking.Sessions, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens, logger: logger}
}

// credentialsRequest is the body for signup and login.
type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleSignUp registers a new account.
//
// HTTP: POST /api/auth/signup
// Body: {"name": "Alice", "password": "s3cret"}
//
// 201 on success; 409 when the name is taken (case-insensitively); 400 when
// a field is blank. Signup does not log the user in.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid signup JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	sess := h.sessions.New()
	if err := sess.SignUp(r.Context(), req.Name, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "signed up, please log in"})
}

// HandleLogin authenticates and sets the session cookie.
//
// HTTP: POST /api/auth/login
// Body: {"name": "Alice", "password": "s3cret"}
//
// A bad name and a bad password both return the same 401 — the response
// never reveals which factor failed.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	sess := h.sessions.New()
	if err := sess.Login(r.Context(), req.Name, req.Password); err != nil {
		writeError(w, err)
		return
	}

	user := sess.CurrentUser()
	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("failed to generate token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "an internal error occurred"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": user.ID,
		"name":    user.Name,
	})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// HandleMe returns the authenticated user.
//
// HTTP: GET /api/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.NotAuthenticated())
		return
	}

	sess, err := h.sessions.ForUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	user := sess.CurrentUser()
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": user.ID,
		"name":    user.Name,
		"tickets": len(user.Tickets),
	})
}
