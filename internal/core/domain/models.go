package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionSource records how a token came into existence. It is provenance
// only; validation treats both sources identically.
type SessionSource int

const (
	SourceSignup SessionSource = iota
	SourceLogin
)

func (s SessionSource) String() string {
	switch s {
	case SourceSignup:
		return "signup"
	case SourceLogin:
		return "login"
	default:
		return "unknown"
	}
}

// User is the persisted player record. Moderation and client-integrity
// flags default to false at creation; BanReason is nil unless a ban is in
// effect.
type User struct {
	ID           uuid.UUID
	Name         string
	Score        int64
	Deaths       int64
	PasswordHash string

	Jailbroken       bool
	HasHackedTools   bool
	RanInEmulator    bool
	HasModifiedScore bool

	IsBanned  bool
	BanReason *string

	Admin bool
	Owner bool
}

// PublicUser is the projection exposed to other players: no hash, no
// moderation state.
type PublicUser struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Score  int64     `json:"score"`
	Deaths int64     `json:"deaths"`
}

// Public returns the externally visible view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Score: u.Score, Deaths: u.Deaths}
}

// Token is a bearer credential bound to a user. Value is globally unique
// and opaque; a nil ExpiresAt never expires. Tokens are immutable once
// issued — re-authentication mints a new one rather than refreshing.
type Token struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Value     string
	Source    SessionSource
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// IsValid reports whether the token is still usable at the given instant.
func (t *Token) IsValid(now time.Time) bool {
	if t.ExpiresAt == nil {
		return true
	}
	return t.ExpiresAt.After(now)
}

// IntegrityFlag names a client-side integrity signal the game reports
// about its own environment.
type IntegrityFlag int

const (
	FlagJailbroken IntegrityFlag = iota
	FlagHackedTools
	FlagEmulator
	FlagModifiedScore
)

func (f IntegrityFlag) String() string {
	switch f {
	case FlagJailbroken:
		return "jailbroken"
	case FlagHackedTools:
		return "has_hacked_tools"
	case FlagEmulator:
		return "ran_in_emulator"
	case FlagModifiedScore:
		return "has_modified_score"
	default:
		return "unknown"
	}
}
