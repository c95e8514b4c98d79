// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver rows or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quotes-service/internal/domain"
)

// QuoteRepository persists quotes in the record store.
//
// Implementations translate the store's unique-violation on quote text
// into a *domain.ConflictError so that a race past the validator still
// surfaces as a conflict.
type QuoteRepository interface {
	// Create inserts a quote stamped with now and returns it with its new ID.
	Create(ctx context.Context, q domain.NewQuote, now time.Time) (*domain.Quote, error)

	// List returns every quote. An empty store yields an empty, non-nil slice.
	List(ctx context.Context) ([]domain.Quote, error)

	// GetByID returns domain.ErrNotFound if the quote does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Quote, error)

	// ExistsByText reports whether any quote other than excludeID has this text.
	// Pass 0 as excludeID to check against all quotes.
	ExistsByText(ctx context.Context, text string, excludeID int64) (bool, error)

	// Update applies the non-nil fields of u and sets updated_at to now.
	// Returns a *domain.ValidationError if u is empty and
	// domain.ErrNotFound if no row was affected.
	Update(ctx context.Context, id int64, u domain.QuoteUpdate, now time.Time) error

	// Delete removes one quote. Returns domain.ErrNotFound if none was removed.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every quote and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// TokenRepository persists bearer tokens in the record store.
type TokenRepository interface {
	// Create inserts an active token with created_at = now.
	Create(ctx context.Context, value string, now time.Time) (*domain.Token, error)

	// FindActive returns domain.ErrNotFound unless an active row matches value.
	FindActive(ctx context.Context, value string) (*domain.Token, error)

	// Revoke sets deleted_at on every row matching value, active or not.
	// A row that is already revoked has deleted_at overwritten with now.
	// Returns domain.ErrNotFound if no row matches.
	Revoke(ctx context.Context, value string, now time.Time) error
}

// Cache defines the contract for caching operations.
// The token service keeps recently admitted tokens here.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with optional TTL.
	// A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error

	// Delete removes a value from the cache.
	// Does not return an error if the key does not exist.
	Delete(ctx context.Context, key string) error
}
