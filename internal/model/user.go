// Package model defines the data structures used throughout the application.
package model

// User represents a registered account: a unique display name, the stored
// credential value, and the tickets the user has booked, in booking order.
//
// WHY Credential string (not a hash type)?
// The core never interprets the credential — it only hands it to an
// Authenticator for verification. Depending on how the account was created it
// may be a bcrypt hash or, for data sets migrated from the legacy tool, the
// plaintext value. The `hashed_password` persisted name is kept for
// compatibility with existing collection files.
//
// Tickets is a composition: a ticket has no existence outside its owner's
// list. Booking appends, cancellation removes, nothing else touches it.
type User struct {
	ID         string   `json:"user_id"`
	Name       string   `json:"name"` // unique among users, case-insensitively
	Credential string   `json:"hashed_password"`
	Tickets    []Ticket `json:"tickets_booked"`
}
