package domain

import "context"

// TokenRepository defines the data-access contract for bearer tokens.
// Tokens are insert-only: expiry makes them logically dead, cleanup of the
// rows themselves is an operational concern outside this interface.
type TokenRepository interface {
	// Create inserts a freshly issued token.
	Create(ctx context.Context, token *Token) error

	// GetByValue looks a token up by its unique opaque value.
	// Returns (nil, nil) when the value matches no token.
	GetByValue(ctx context.Context, value string) (*Token, error)
}
