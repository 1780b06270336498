package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
)

// PgxTokenRepository implements domain.TokenRepository using pgxpool.
type PgxTokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new PgxTokenRepository.
func NewTokenRepository(pool *pgxpool.Pool) *PgxTokenRepository {
	return &PgxTokenRepository{pool: pool}
}

// Create inserts a freshly issued token. The unique index on value backs
// the global-uniqueness invariant.
func (r *PgxTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	query := `INSERT INTO tokens (id, user_id, value, source, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		token.ID, token.UserID, token.Value, int(token.Source), token.ExpiresAt, token.CreatedAt)
	return err
}

// GetByValue looks a token up by its unique opaque value.
// Returns (nil, nil) when the value matches no token.
func (r *PgxTokenRepository) GetByValue(ctx context.Context, value string) (*domain.Token, error) {
	query := `SELECT id, user_id, value, source, expires_at, created_at
		FROM tokens WHERE value = $1`

	var t domain.Token
	var source int
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&t.ID, &t.UserID, &t.Value, &source, &t.ExpiresAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.Source = domain.SessionSource(source)

	return &t, nil
}
