// Package v1 implements the leaderboard business rules: account lifecycle,
// bearer-token sessions, score verification with the anticheat window, and
// the moderation surface.
//
// Failures are reported through sentinel errors wrapped with
// fmt.Errorf("%w"); handlers map them to HTTP statuses with errors.Is.
// Cryptographic detail never travels past ErrScoreRejected — a tampered or
// malformed submission collapses to the same generic rejection so clients
// cannot probe the codec.
package v1

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates a wrong password.
	// HTTP: 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the referenced user does not exist.
	// HTTP: 401 for login (never reveal which half was wrong), 404 for
	// admin lookups.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the name is already taken.
	// HTTP: 409 Conflict.
	ErrUserExists = errors.New("user already exists")

	// ErrUnauthenticated indicates a missing, unknown, or expired bearer
	// token. HTTP: 401 Unauthorized.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller lacks the privilege for a
	// moderation action. HTTP: 403 Forbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrScoreRejected indicates a score submission that could not be
	// verified: undecodable ciphertext, tampered payload, or a bad
	// verification token. Deliberately carries no detail.
	// HTTP: 400 Bad Request, body "Unable to verify score".
	ErrScoreRejected = errors.New("unable to verify score")
)

// ValidationError reports a malformed registration field with enough
// context for the client to fix it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
