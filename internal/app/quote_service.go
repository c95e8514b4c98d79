package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/telemetry"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

// Mutation labels for metrics.
const (
	opCreate    = "create"
	opUpdate    = "update"
	opDelete    = "delete"
	opDeleteAll = "delete_all"
)

// errNoIdentity is returned when a create yields no store identity.
var errNoIdentity = errors.New("store returned no quote identity")

// QuoteService orchestrates quote use cases.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
type QuoteService struct {
	quotes    ports.QuoteRepository
	validator *QuoteValidator
	executor  *Executor
	metrics   *telemetry.DomainMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Quotes  ports.QuoteRepository
	Logger  *slog.Logger
	Metrics *telemetry.DomainMetrics

	// Now stamps created_at and updated_at. Defaults to UTC wall time.
	Now func() time.Time
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Quotes == nil {
		panic("quote repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.QuoteService"))

	return &QuoteService{
		quotes:    cfg.Quotes,
		validator: NewQuoteValidator(cfg.Quotes, logger),
		executor:  NewExecutor(logger),
		metrics:   cfg.Metrics,
		logger:    logger,
		now:       defaultNow(cfg.Now),
	}
}

// List returns every quote, possibly none.
func (s *QuoteService) List(ctx context.Context) ([]domain.Quote, error) {
	logger := requestLogger(ctx, s.logger, "app.QuoteService")

	quotes, err := s.quotes.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list quotes", slog.Any("error", err))

		return nil, domain.NewInternalError(MsgFetchFailed, err)
	}

	logger.DebugContext(ctx, "listed quotes", slog.Int("count", len(quotes)))

	return quotes, nil
}

// Get returns one quote. Non-positive ids never match a row.
func (s *QuoteService) Get(ctx context.Context, id int64) (*domain.Quote, error) {
	logger := requestLogger(ctx, s.logger, "app.QuoteService")

	if id <= 0 {
		return nil, quoteNotFound(id)
	}

	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}

		logger.ErrorContext(ctx, "failed to fetch quote",
			slog.Int64("quote_id", id),
			slog.Any("error", err),
		)

		return nil, domain.NewInternalError(MsgFetchFailed, err)
	}

	logger.DebugContext(ctx, "fetched quote", slog.Int64("quote_id", id))

	return quote, nil
}

// Create validates and stores a new quote.
func (s *QuoteService) Create(ctx context.Context, in domain.NewQuote) (*domain.Quote, error) {
	in = in.Normalize()

	op := Operation[domain.NewQuote, *domain.Quote, *domain.Quote]{
		Name:     "quote.create",
		Validate: s.validator.ValidateCreate,
		Perform: func(ctx context.Context, in domain.NewQuote) (*domain.Quote, error) {
			quote, err := s.quotes.Create(ctx, in, s.now())
			if err != nil {
				if domain.IsConflict(err) {
					return nil, err
				}

				return nil, domain.NewInternalError(MsgInsertFailed, err)
			}

			return quote, nil
		},
		Verify: func(_ context.Context, _ domain.NewQuote, quote *domain.Quote) (*domain.Quote, error) {
			if quote == nil || quote.ID <= 0 {
				return nil, domain.NewInternalError(MsgInsertFailed, errNoIdentity)
			}

			return quote, nil
		},
	}

	quote, err := Execute(ctx, s.executor, op, in)
	s.metrics.QuoteMutation(opCreate, err)

	if err != nil {
		s.logFailure(ctx, "failed to create quote", err)
		return nil, err
	}

	requestLogger(ctx, s.logger, "app.QuoteService").InfoContext(ctx, "quote created",
		slog.Int64("quote_id", quote.ID),
		slog.String("author", quote.Author),
	)

	return quote, nil
}

type quoteUpdateInput struct {
	id     int64
	update domain.QuoteUpdate
}

// Update applies a partial update and returns the row as re-read from the store.
// A row deleted between the write and the re-read surfaces as not found.
func (s *QuoteService) Update(ctx context.Context, id int64, u domain.QuoteUpdate) (*domain.Quote, error) {
	op := Operation[quoteUpdateInput, struct{}, *domain.Quote]{
		Name: "quote.update",
		Validate: func(ctx context.Context, in quoteUpdateInput) error {
			return s.validator.ValidateUpdate(ctx, in.id, in.update)
		},
		Perform: func(ctx context.Context, in quoteUpdateInput) (struct{}, error) {
			if in.id <= 0 {
				return struct{}{}, quoteNotFound(in.id)
			}

			err := s.quotes.Update(ctx, in.id, in.update, s.now())
			if err != nil && !isClientError(err) {
				err = domain.NewInternalError(MsgUpdateFailed, err)
			}

			return struct{}{}, err
		},
		Verify: func(ctx context.Context, in quoteUpdateInput, _ struct{}) (*domain.Quote, error) {
			quote, err := s.quotes.GetByID(ctx, in.id)
			if err != nil {
				if domain.IsNotFound(err) {
					return nil, err
				}

				return nil, domain.NewInternalError(MsgUpdateFailed, err)
			}

			return quote, nil
		},
	}

	quote, err := Execute(ctx, s.executor, op, quoteUpdateInput{id: id, update: u})
	s.metrics.QuoteMutation(opUpdate, err)

	if err != nil {
		s.logFailure(ctx, "failed to update quote", err, slog.Int64("quote_id", id))
		return nil, err
	}

	requestLogger(ctx, s.logger, "app.QuoteService").InfoContext(ctx, "quote updated",
		slog.Int64("quote_id", id),
	)

	return quote, nil
}

// Delete removes one quote.
func (s *QuoteService) Delete(ctx context.Context, id int64) error {
	logger := requestLogger(ctx, s.logger, "app.QuoteService")

	if id <= 0 {
		s.metrics.QuoteMutation(opDelete, domain.ErrNotFound)
		return quoteNotFound(id)
	}

	err := s.quotes.Delete(ctx, id)
	if err != nil && !domain.IsNotFound(err) {
		err = domain.NewInternalError(MsgDeleteFailed, err)
	}

	s.metrics.QuoteMutation(opDelete, err)

	if err != nil {
		s.logFailure(ctx, "failed to delete quote", err, slog.Int64("quote_id", id))
		return err
	}

	logger.InfoContext(ctx, "quote deleted", slog.Int64("quote_id", id))

	return nil
}

// DeleteAll removes every quote and reports how many were removed.
func (s *QuoteService) DeleteAll(ctx context.Context) (int64, error) {
	logger := requestLogger(ctx, s.logger, "app.QuoteService")

	n, err := s.quotes.DeleteAll(ctx)
	if err != nil {
		err = domain.NewInternalError(MsgDeleteAllFailed, err)
	}

	s.metrics.QuoteMutation(opDeleteAll, err)

	if err != nil {
		s.logFailure(ctx, "failed to delete quotes", err)
		return 0, err
	}

	logger.InfoContext(ctx, "quotes deleted", slog.Int64("count", n))

	return n, nil
}

// logFailure logs store failures at error level and client errors at debug.
func (s *QuoteService) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	logger := requestLogger(ctx, s.logger, "app.QuoteService")
	attrs = append(attrs, slog.Any("error", err))

	if step, ok := GetExecutionStep(err); ok {
		attrs = append(attrs, slog.String("step", string(step)))
	}

	if domain.IsInternal(err) {
		logger.ErrorContext(ctx, msg, attrs...)
		return
	}

	logger.DebugContext(ctx, msg, attrs...)
}

func quoteNotFound(id int64) error {
	return domain.NewNotFoundError(domain.EntityQuote, strconv.FormatInt(id, 10))
}

// isClientError reports errors the caller can act on.
func isClientError(err error) bool {
	return domain.IsNotFound(err) ||
		domain.IsConflict(err) ||
		domain.IsValidation(err) ||
		domain.IsUnauthorized(err)
}
