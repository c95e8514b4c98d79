package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

const quoteColumns = "id, text, author, created_at, updated_at"

// Quotes implements ports.QuoteRepository.
type Quotes struct {
	s *Store
}

var _ ports.QuoteRepository = (*Quotes)(nil)

// Create inserts a quote with created_at = updated_at = now.
func (r *Quotes) Create(ctx context.Context, q domain.NewQuote, now time.Time) (_ *domain.Quote, err error) {
	const op = "store.Quotes.Create"

	ctx, done := r.s.begin(ctx, "quotes.create")
	defer done(&err)

	now = now.UTC()
	query := r.s.rebind("INSERT INTO quotes (text, author, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id")

	var id int64
	err = r.s.db.QueryRowContext(ctx, query, q.Text, q.Author, r.s.timeArg(now), r.s.timeArg(now)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictErrorWithDetails(domain.EntityQuote, domain.MsgDuplicateText, err.Error())
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &domain.Quote{
		ID:        id,
		Text:      q.Text,
		Author:    q.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// List returns every quote ordered by id.
func (r *Quotes) List(ctx context.Context) (_ []domain.Quote, err error) {
	const op = "store.Quotes.List"

	ctx, done := r.s.begin(ctx, "quotes.list")
	defer done(&err)

	rows, err := r.s.db.QueryContext(ctx, "SELECT "+quoteColumns+" FROM quotes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	quotes := make([]domain.Quote, 0)

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		quotes = append(quotes, *q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s (rows): %w", op, err)
	}

	return quotes, nil
}

// GetByID returns one quote.
func (r *Quotes) GetByID(ctx context.Context, id int64) (_ *domain.Quote, err error) {
	const op = "store.Quotes.GetByID"

	ctx, done := r.s.begin(ctx, "quotes.get")
	defer done(&err)

	row := r.s.db.QueryRowContext(ctx, r.s.rebind("SELECT "+quoteColumns+" FROM quotes WHERE id = ?"), id)

	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntityQuote, strconv.FormatInt(id, 10))
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return q, nil
}

// ExistsByText reports whether a quote other than excludeID carries text.
func (r *Quotes) ExistsByText(ctx context.Context, text string, excludeID int64) (_ bool, err error) {
	const op = "store.Quotes.ExistsByText"

	ctx, done := r.s.begin(ctx, "quotes.exists")
	defer done(&err)

	query := r.s.rebind("SELECT COUNT(*) FROM quotes WHERE text = ? AND id <> ?")

	var count int64
	if err = r.s.db.QueryRowContext(ctx, query, text, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count > 0, nil
}

// Update writes the present fields of u and stamps updated_at.
func (r *Quotes) Update(ctx context.Context, id int64, u domain.QuoteUpdate, now time.Time) (err error) {
	const op = "store.Quotes.Update"

	if u.IsEmpty() {
		return domain.NewValidationError("", domain.MsgUpdateFieldsRequired)
	}

	ctx, done := r.s.begin(ctx, "quotes.update")
	defer done(&err)

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if u.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *u.Text)
	}

	if u.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, *u.Author)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, r.s.timeArg(now), id)

	query := r.s.rebind("UPDATE quotes SET " + strings.Join(sets, ", ") + " WHERE id = ?")

	res, err := r.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictErrorWithDetails(domain.EntityQuote, domain.MsgDuplicateText, err.Error())
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return requireAffected(res, op, domain.EntityQuote, strconv.FormatInt(id, 10))
}

// Delete removes one quote.
func (r *Quotes) Delete(ctx context.Context, id int64) (err error) {
	const op = "store.Quotes.Delete"

	ctx, done := r.s.begin(ctx, "quotes.delete")
	defer done(&err)

	res, err := r.s.db.ExecContext(ctx, r.s.rebind("DELETE FROM quotes WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireAffected(res, op, domain.EntityQuote, strconv.FormatInt(id, 10))
}

// DeleteAll removes every quote.
func (r *Quotes) DeleteAll(ctx context.Context) (_ int64, err error) {
	const op = "store.Quotes.DeleteAll"

	ctx, done := r.s.begin(ctx, "quotes.delete_all")
	defer done(&err)

	res, err := r.s.db.ExecContext(ctx, "DELETE FROM quotes")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s (rows affected): %w", op, err)
	}

	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (*domain.Quote, error) {
	var (
		q                    domain.Quote
		createdAt, updatedAt dbTime
	)

	if err := row.Scan(&q.ID, &q.Text, &q.Author, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	q.CreatedAt = createdAt.Time
	q.UpdatedAt = updatedAt.Time

	return &q, nil
}

func requireAffected(res sql.Result, op, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s (rows affected): %w", op, err)
	}

	if n == 0 {
		return domain.NewNotFoundError(entity, id)
	}

	return nil
}
