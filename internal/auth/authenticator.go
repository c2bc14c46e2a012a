// Package auth provides credential verification and JWT session tokens.
//
// CREDENTIAL VERIFICATION AS A CAPABILITY:
// The booking core never inspects a credential's internal representation. It
// holds an Authenticator and asks two things: turn a plaintext into a
// storable value (signup), and check a plaintext against a stored value
// (login). That keeps the hashing scheme swappable without touching the
// session or engine code.
//
// Two implementations ship:
//   - Bcrypt: the default. Slow by design, salt embedded in the output.
//   - Plain: trimmed string equality, matching the legacy tool's data files
//     where the stored value is the plaintext itself. Only for migrated data.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrCredentialMismatch is returned by Verify when the plaintext does not
// match the stored value. Callers must not reveal which factor failed.
var ErrCredentialMismatch = errors.New("auth: credential mismatch")

// Authenticator turns plaintext credentials into stored values and verifies
// them. Implementations must return ErrCredentialMismatch (possibly wrapped)
// on a mismatch so callers can distinguish it from infrastructure failures.
type Authenticator interface {
	Hash(plaintext string) (string, error)
	Verify(stored, plaintext string) error
}

// defaultCost is the bcrypt work factor. Cost 12 takes roughly 250ms on a
// modern server — negligible for login, brutal for offline cracking.
const defaultCost = 12

// Bcrypt is the production Authenticator.
//
// bcrypt generates a random salt per hash and embeds it in the output, so
// the stored value is self-contained:
//
//	$2a$12$<22-char salt><31-char hash>
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a Bcrypt authenticator with the default cost (12).
func NewBcrypt() *Bcrypt {
	return &Bcrypt{cost: defaultCost}
}

// NewBcryptWithCost returns a Bcrypt authenticator with a custom cost.
// Tests use the minimum cost (4) to avoid ~250ms per hash; never use a low
// cost in production.
func NewBcryptWithCost(cost int) *Bcrypt {
	return &Bcrypt{cost: cost}
}

// Hash hashes the plaintext with bcrypt. Plaintexts over 72 bytes are
// rejected explicitly because bcrypt silently truncates them.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks the plaintext against a stored bcrypt hash. The comparison
// inside bcrypt is constant-time.
func (b *Bcrypt) Verify(stored, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCredentialMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// Plain compares trimmed plaintext for equality. This is the legacy tool's
// behaviour and exists so its data files keep working; select it with
// AUTH_MODE=plain and migrate away from it.
type Plain struct{}

// NewPlain returns the plaintext-equality authenticator.
func NewPlain() *Plain {
	return &Plain{}
}

// Hash stores the trimmed plaintext as-is.
func (p *Plain) Hash(plaintext string) (string, error) {
	return strings.TrimSpace(plaintext), nil
}

// Verify compares trimmed values for exact equality.
func (p *Plain) Verify(stored, plaintext string) error {
	if strings.TrimSpace(stored) != strings.TrimSpace(plaintext) {
		return ErrCredentialMismatch
	}
	return nil
}

// Interface checks for both implementations.
var (
	_ Authenticator = (*Bcrypt)(nil)
	_ Authenticator = (*Plain)(nil)
)
