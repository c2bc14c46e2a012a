package directory

import (
	"strings"

	"github.com/sakif/railbook/internal/model"
)

// UserDirectory is the in-memory index over user accounts.
//
// Users are held as pointers so that a handle returned by a lookup stays
// valid across later signups — booking mutations (ticket append/remove) made
// through a session handle must be the same data the next Save persists.
type UserDirectory struct {
	users []*model.User
}

// NewUserDirectory wraps the loaded user collection.
func NewUserDirectory(users []model.User) *UserDirectory {
	d := &UserDirectory{users: make([]*model.User, len(users))}
	for i := range users {
		u := users[i]
		d.users[i] = &u
	}
	return d
}

// FindByName returns the user with exactly this (trimmed) name.
//
// This is the login lookup and it is deliberately case-sensitive, while
// signup's duplicate check (NameTaken) is case-insensitive. The asymmetry is
// intentional: "Alice" and "alice" cannot both sign up, but logging in
// requires the name exactly as registered.
func (d *UserDirectory) FindByName(name string) (*model.User, bool) {
	name = strings.TrimSpace(name)
	for _, u := range d.users {
		if name == strings.TrimSpace(u.Name) {
			return u, true
		}
	}
	return nil, false
}

// FindByID returns the user with the given identifier.
func (d *UserDirectory) FindByID(id string) (*model.User, bool) {
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// NameTaken reports whether any user already holds this name,
// case-insensitively. Used by signup to enforce uniqueness.
func (d *UserDirectory) NameTaken(name string) bool {
	name = strings.TrimSpace(name)
	for _, u := range d.users {
		if strings.EqualFold(name, strings.TrimSpace(u.Name)) {
			return true
		}
	}
	return false
}

// Add appends a user and returns its handle. The caller must have verified
// name uniqueness first.
func (d *UserDirectory) Add(u model.User) *model.User {
	p := &u
	d.users = append(d.users, p)
	return p
}

// All returns a value snapshot of every user, in insertion order, for
// persistence.
func (d *UserDirectory) All() []model.User {
	out := make([]model.User, len(d.users))
	for i, u := range d.users {
		out[i] = *u
	}
	return out
}

// Each calls fn for every user handle, in insertion order. Used by the
// load-time ticket repair pass.
func (d *UserDirectory) Each(fn func(*model.User)) {
	for _, u := range d.users {
		fn(u)
	}
}

// Len reports the number of registered users.
func (d *UserDirectory) Len() int {
	return len(d.users)
}
