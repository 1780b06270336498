package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the data-access contract for player records.
// Implementations live in internal/core/repository; the logic layer depends
// on this interface only, never on SQL or pgx directly.
//
// Lookup methods return (nil, nil) when no row matches.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Create inserts a new user with zeroed score/deaths and cleared
	// flags, returning the stored record.
	Create(ctx context.Context, name, passwordHash string) (*User, error)

	// List returns every user, banned or not. Admin surface only.
	List(ctx context.Context) ([]User, error)

	// Leaderboard returns up to limit non-banned users, best score first.
	Leaderboard(ctx context.Context, limit int) ([]User, error)

	// CountActive counts non-banned users.
	CountActive(ctx context.Context) (int64, error)

	// SumDeaths totals deaths across all users.
	SumDeaths(ctx context.Context) (int64, error)

	// UpdateScoreIfHigher raises the stored score to newScore only when it
	// beats the current value, atomically in the store. Reports whether a
	// row was updated.
	UpdateScoreIfHigher(ctx context.Context, id uuid.UUID, newScore int64) (bool, error)

	// SetScore overwrites the stored score unconditionally (admin restore).
	SetScore(ctx context.Context, id uuid.UUID, score int64) error

	IncrementDeaths(ctx context.Context, id uuid.UUID) error

	// SetBan sets or clears the ban flag; reason is nil when clearing.
	SetBan(ctx context.Context, id uuid.UUID, banned bool, reason *string) error

	SetIntegrityFlag(ctx context.Context, id uuid.UUID, flag IntegrityFlag) error

	SetAdmin(ctx context.Context, id uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error
}
