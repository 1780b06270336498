package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
)

const userColumns = `id, name, score, deaths, password_hash,
	jailbroken, has_hacked_tools, ran_in_emulator, has_modified_score,
	is_banned, ban_reason, admin, owner`

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Score, &u.Deaths, &u.PasswordHash,
		&u.Jailbroken, &u.HasHackedTools, &u.RanInEmulator, &u.HasModifiedScore,
		&u.IsBanned, &u.BanReason, &u.Admin, &u.Owner,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user with the given id, or (nil, nil) when absent.
func (r *PgxUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByName returns the user with the given name, or (nil, nil) when absent.
func (r *PgxUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1`
	return scanUser(r.pool.QueryRow(ctx, query, name))
}

// ExistsByName returns true when a user with the given name already exists.
func (r *PgxUserRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE name = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a new user and returns the stored record. Score, deaths
// and all flags take their column defaults.
func (r *PgxUserRepository) Create(ctx context.Context, name, passwordHash string) (*domain.User, error) {
	query := `INSERT INTO users (name, password_hash) VALUES ($1, $2) RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, name, passwordHash))
}

// List returns every user, banned or not.
func (r *PgxUserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY score DESC`
	return r.queryUsers(ctx, query)
}

// Leaderboard returns up to limit non-banned users, best score first.
func (r *PgxUserRepository) Leaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_banned = false ORDER BY score DESC LIMIT $1`
	return r.queryUsers(ctx, query, limit)
}

func (r *PgxUserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CountActive counts non-banned users.
func (r *PgxUserRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_banned = false`).Scan(&n)
	return n, err
}

// SumDeaths totals deaths across all users.
func (r *PgxUserRepository) SumDeaths(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(deaths), 0) FROM users`).Scan(&n)
	return n, err
}

// UpdateScoreIfHigher raises the stored score only when newScore beats it.
// The comparison runs inside the UPDATE so two concurrent submissions
// cannot both win against a stale read.
func (r *PgxUserRepository) UpdateScoreIfHigher(ctx context.Context, id uuid.UUID, newScore int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET score = $2 WHERE id = $1 AND score < $2`, id, newScore)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetScore overwrites the stored score unconditionally.
func (r *PgxUserRepository) SetScore(ctx context.Context, id uuid.UUID, score int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET score = $2 WHERE id = $1`, id, score)
	return err
}

// IncrementDeaths adds one to the user's death count.
func (r *PgxUserRepository) IncrementDeaths(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET deaths = deaths + 1 WHERE id = $1`, id)
	return err
}

// SetBan sets or clears the ban flag together with its reason.
func (r *PgxUserRepository) SetBan(ctx context.Context, id uuid.UUID, banned bool, reason *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_banned = $2, ban_reason = $3 WHERE id = $1`, id, banned, reason)
	return err
}

// SetIntegrityFlag raises one of the client-integrity columns. The column
// name comes from a fixed whitelist, never from input.
func (r *PgxUserRepository) SetIntegrityFlag(ctx context.Context, id uuid.UUID, flag domain.IntegrityFlag) error {
	var column string
	switch flag {
	case domain.FlagJailbroken:
		column = "jailbroken"
	case domain.FlagHackedTools:
		column = "has_hacked_tools"
	case domain.FlagEmulator:
		column = "ran_in_emulator"
	case domain.FlagModifiedScore:
		column = "has_modified_score"
	default:
		return fmt.Errorf("unknown integrity flag %d", flag)
	}

	_, err := r.pool.Exec(ctx, `UPDATE users SET `+column+` = true WHERE id = $1`, id)
	return err
}

// SetAdmin grants the admin flag.
func (r *PgxUserRepository) SetAdmin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET admin = true WHERE id = $1`, id)
	return err
}

// Delete removes the user; their tokens go with them via FK cascade.
func (r *PgxUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
