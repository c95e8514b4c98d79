package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

// Tokens implements ports.TokenRepository.
type Tokens struct {
	s *Store
}

var _ ports.TokenRepository = (*Tokens)(nil)

// Create inserts an active token.
func (r *Tokens) Create(ctx context.Context, value string, now time.Time) (_ *domain.Token, err error) {
	const op = "store.Tokens.Create"

	ctx, done := r.s.begin(ctx, "tokens.create")
	defer done(&err)

	now = now.UTC()
	query := r.s.rebind("INSERT INTO tokens (token, created_at) VALUES (?, ?) RETURNING id")

	var id int64
	if err = r.s.db.QueryRowContext(ctx, query, value, r.s.timeArg(now)).Scan(&id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &domain.Token{ID: id, Value: value, CreatedAt: now}, nil
}

// FindActive returns the newest active row for value.
func (r *Tokens) FindActive(ctx context.Context, value string) (_ *domain.Token, err error) {
	const op = "store.Tokens.FindActive"

	ctx, done := r.s.begin(ctx, "tokens.find_active")
	defer done(&err)

	query := r.s.rebind(`SELECT id, token, created_at, deleted_at FROM tokens
WHERE token = ? AND deleted_at IS NULL
ORDER BY id DESC LIMIT 1`)

	var (
		t                    domain.Token
		createdAt, deletedAt dbTime
	)

	err = r.s.db.QueryRowContext(ctx, query, value).Scan(&t.ID, &t.Value, &createdAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntityToken, "")
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t.CreatedAt = createdAt.Time
	t.DeletedAt = deletedAt.ptr()

	return &t, nil
}

// Revoke stamps deleted_at on every row for value. Rows already revoked are
// matched again and take the newer timestamp.
func (r *Tokens) Revoke(ctx context.Context, value string, now time.Time) (err error) {
	const op = "store.Tokens.Revoke"

	ctx, done := r.s.begin(ctx, "tokens.revoke")
	defer done(&err)

	query := r.s.rebind("UPDATE tokens SET deleted_at = ? WHERE token = ?")

	res, err := r.s.db.ExecContext(ctx, query, r.s.timeArg(now), value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireAffected(res, op, domain.EntityToken, "")
}
