package model

import "time"

// Ticket is one booked journey. It is created at booking time, removed from
// its owner's list at cancellation, and immutable in between.
//
// Train is an embedded snapshot (see Train.Snapshot), not a reference into
// the train directory — later catalog changes do not affect booked tickets.
//
// UserID duplicates the owning user's ID inside the ticket. Old data files
// sometimes carry tickets with a blank user_id or ticket_id; those are
// repaired at load time (owner backfilled, id regenerated) rather than
// rejected.
type Ticket struct {
	ID          string    `json:"ticket_id"`
	UserID      string    `json:"user_id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	TravelDate  time.Time `json:"date_of_travel"`
	Train       Train     `json:"train"`
}

// Info renders a one-line human-readable summary, used by listings and logs.
func (t Ticket) Info() string {
	return t.ID + ": " + t.Source + " -> " + t.Destination + " on " +
		t.TravelDate.Format("02-01-2006") + " (train " + t.Train.Number + ")"
}
