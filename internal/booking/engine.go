package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/railbook/internal/apperror"
	"github.com/sakif/railbook/internal/directory"
	"github.com/sakif/railbook/internal/model"
	"github.com/sakif/railbook/internal/store"
)

// DateLayout is the fixed travel-date format at every boundary: dd-MM-yyyy,
// e.g. "25-12-2025". Anything else is rejected as an invalid date.
const DateLayout = "02-01-2006"

// Engine runs the booking decision flow and the ticket lifecycle. It owns no
// state beyond its collaborators; the user a mutation applies to comes from
// the Session passed into each call.
type Engine struct {
	trains *directory.TrainDirectory
	users  *directory.UserDirectory
	userSt store.Store[model.User]
	logger *slog.Logger
}

// NewEngine wires the engine to its collaborators.
func NewEngine(
	trains *directory.TrainDirectory,
	users *directory.UserDirectory,
	userStore store.Store[model.User],
	logger *slog.Logger,
) *Engine {
	return &Engine{
		trains: trains,
		users:  users,
		userSt: userStore,
		logger: logger,
	}
}

// IndexedTicket pairs a ticket with its 1-based position in the owner's
// list. The index is only valid until the next cancellation — removing a
// ticket shifts every later index.
type IndexedTicket struct {
	Index  int          `json:"index"`
	Ticket model.Ticket `json:"ticket"`
}

// Book runs the single-shot validate-then-commit booking flow:
//
//	auth → fields → train lookup → route check → date parse → commit
//
// Each step fails with its own taxonomy error so the caller can report a
// specific reason. On success it returns the new ticket's ID.
//
// The commit appends the ticket to the session user's list and rewrites the
// user collection. If the rewrite fails, the in-memory append is NOT rolled
// back: the ticket exists in memory but may not survive a restart. The
// divergence is logged and surfaced as a persistence error.
func (e *Engine) Book(ctx context.Context, sess *Session, from, to, date, trainKey string) (string, error) {
	user, err := sess.RequireLogin()
	if err != nil {
		return "", err
	}

	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	date = strings.TrimSpace(date)
	trainKey = strings.TrimSpace(trainKey)

	missing := []string{}
	if from == "" {
		missing = append(missing, "from")
	}
	if to == "" {
		missing = append(missing, "to")
	}
	if date == "" {
		missing = append(missing, "date")
	}
	if trainKey == "" {
		missing = append(missing, "train")
	}
	if len(missing) > 0 {
		return "", apperror.MissingFields(missing...)
	}

	train, ok := e.trains.FindByKey(trainKey)
	if !ok {
		return "", apperror.NotFound("train", trainKey)
	}

	if !e.trains.CoversRoute(train, from, to) {
		return "", apperror.RouteNotCovered(train.Number, from, to)
	}

	travelDate, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", apperror.InvalidDate(date, "dd-MM-yyyy")
	}

	ticket := model.Ticket{
		ID:          xid.New().String(),
		UserID:      user.ID,
		Source:      from,
		Destination: to,
		TravelDate:  travelDate,
		Train:       train.Snapshot(),
	}
	user.Tickets = append(user.Tickets, ticket)

	if err := e.userSt.Save(ctx, e.users.All()); err != nil {
		e.logger.Error("booked ticket not persisted, memory ahead of disk",
			slog.String("ticketID", ticket.ID),
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return "", apperror.Persistence("users", err)
	}

	e.logger.Info("ticket booked",
		slog.String("ticketID", ticket.ID),
		slog.String("userID", user.ID),
		slog.String("train", train.Number),
		slog.String("route", from+" -> "+to),
	)
	return ticket.ID, nil
}

// ListBookings returns the session user's tickets with their 1-based display
// positions. An empty list is a valid result, distinct from "not logged in".
func (e *Engine) ListBookings(sess *Session) ([]IndexedTicket, error) {
	user, err := sess.RequireLogin()
	if err != nil {
		return nil, err
	}

	out := make([]IndexedTicket, 0, len(user.Tickets))
	for i, t := range user.Tickets {
		out = append(out, IndexedTicket{Index: i + 1, Ticket: t})
	}
	return out, nil
}

// CancelByID removes the first ticket in the session user's list whose ID
// equals the trimmed input, then persists.
//
// The lookup is scoped to the current user only — cancelling another user's
// ticket ID is indistinguishable from "not found".
func (e *Engine) CancelByID(ctx context.Context, sess *Session, ticketID string) error {
	user, err := sess.RequireLogin()
	if err != nil {
		return err
	}

	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return apperror.MissingFields("ticketId")
	}

	at := -1
	for i, t := range user.Tickets {
		if t.ID == ticketID {
			at = i
			break
		}
	}
	if at < 0 {
		return apperror.NotFound("ticket", ticketID)
	}

	return e.removeTicket(ctx, sess, at)
}

// CancelByIndex removes the ticket at the given 1-based position, then
// persists.
//
// STALE INDEX HAZARD:
// An index is only valid for the duration of one listing — any cancellation
// shifts all later positions. The engine validates against the current list
// length only; it does not try to detect a listing that has gone stale.
func (e *Engine) CancelByIndex(ctx context.Context, sess *Session, oneBasedIndex int) error {
	user, err := sess.RequireLogin()
	if err != nil {
		return err
	}

	if oneBasedIndex < 1 || oneBasedIndex > len(user.Tickets) {
		return apperror.IndexOutOfRange(oneBasedIndex, len(user.Tickets))
	}

	return e.removeTicket(ctx, sess, oneBasedIndex-1)
}

// removeTicket deletes the ticket at a 0-based position from the session
// user's list and rewrites the user collection. As with booking, a failed
// rewrite leaves the in-memory mutation in place; the divergence is logged
// and surfaced, not auto-retried.
func (e *Engine) removeTicket(ctx context.Context, sess *Session, at int) error {
	user := sess.CurrentUser()
	removed := user.Tickets[at]
	user.Tickets = append(user.Tickets[:at], user.Tickets[at+1:]...)

	if err := e.userSt.Save(ctx, e.users.All()); err != nil {
		e.logger.Error("cancellation not persisted, memory ahead of disk",
			slog.String("ticketID", removed.ID),
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return apperror.Persistence("users", err)
	}

	e.logger.Info("ticket cancelled",
		slog.String("ticket", removed.Info()),
		slog.String("userID", user.ID),
	)
	return nil
}

// ListTrains returns the full catalog, for display.
func (e *Engine) ListTrains() []model.Train {
	return e.trains.List()
}

// SearchTrains returns trains whose stations include both endpoints,
// regardless of order. See TrainDirectory.Search.
func (e *Engine) SearchTrains(from, to string) []model.Train {
	return e.trains.Search(from, to)
}
