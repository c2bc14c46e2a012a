package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/railbook/internal/apperror"
	"github.com/sakif/railbook/internal/auth"
	"github.com/sakif/railbook/internal/booking"
)

// BookingHandler serves the ticket endpoints. Every route here sits behind
// the RequireAuth middleware; the handler builds a bound Session from the
// authenticated user ID, so the engine's own RequireLogin gate stays the
// single source of "not authenticated".
type BookingHandler struct {
	engine   *booking.Engine
	sessions *booking.Sessions
	logger   *slog.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(engine *booking.Engine, sessions *booking.Sessions, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{engine: engine, sessions: sessions, logger: logger}
}

// sessionFor rebuilds the caller's session from the request context.
func (h *BookingHandler) sessionFor(r *http.Request) (*booking.Session, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, apperror.NotAuthenticated()
	}
	return h.sessions.ForUser(userID)
}

// bookRequest is the body for creating a booking. The date must be
// dd-MM-yyyy; train accepts a train number or a train ID.
type bookRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Date  string `json:"date"`
	Train string `json:"train"`
}

// HandleBook books a ticket.
//
// HTTP: POST /api/bookings
// Body: {"from":"Delhi","to":"Patna","date":"01-01-2026","train":"12301"}
//
// 201 with {"ticket_id": "..."} on success. Failure reasons map onto the
// taxonomy: 400 missing field / bad date, 404 unknown train, 422 train
// doesn't run that direction, 500 persistence failure.
func (h *BookingHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid booking JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	ticketID, err := h.engine.Book(r.Context(), sess, req.From, req.To, req.Date, req.Train)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"ticket_id": ticketID})
}

// HandleList returns the caller's tickets with 1-based display indexes.
// An empty array is a normal 200.
//
// HTTP: GET /api/bookings
func (h *BookingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tickets, err := h.engine.ListBookings(sess)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}

// HandleCancelByID cancels one of the caller's tickets by its ID. A ticket
// belonging to someone else is a plain 404.
//
// HTTP: DELETE /api/bookings/id/{ticketID}
func (h *BookingHandler) HandleCancelByID(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ticketID := r.PathValue("ticketID")
	if err := h.engine.CancelByID(r.Context(), sess, ticketID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// HandleCancelByIndex cancels by 1-based listing position. The index is only
// meaningful against the most recent listing — cancelling shifts later
// positions.
//
// HTTP: DELETE /api/bookings/index/{index}
func (h *BookingHandler) HandleCancelByIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	idxStr := r.PathValue("index")
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		writeError(w, apperror.ValidationFailed("index", "index must be a number"))
		return
	}

	if err := h.engine.CancelByIndex(r.Context(), sess, idx); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
