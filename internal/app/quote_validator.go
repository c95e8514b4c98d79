package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

// QuoteValidator applies the write rules for quotes in order:
// presence, text length, author length, then uniqueness of text.
// Only the last rule reaches the store.
type QuoteValidator struct {
	quotes ports.QuoteRepository
	logger *slog.Logger
}

// NewQuoteValidator creates a validator backed by the quote store.
func NewQuoteValidator(quotes ports.QuoteRepository, logger *slog.Logger) *QuoteValidator {
	if quotes == nil {
		panic("quote repository is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteValidator{quotes: quotes, logger: logger}
}

// ValidateCreate checks a create payload. The author default is applied first.
func (v *QuoteValidator) ValidateCreate(ctx context.Context, in domain.NewQuote) error {
	if err := in.Validate(); err != nil {
		return err
	}

	return v.checkUnique(ctx, in.Text, 0)
}

// ValidateUpdate checks a partial update of quote id.
// The uniqueness lookup runs only when text changes and ignores the target row.
func (v *QuoteValidator) ValidateUpdate(ctx context.Context, id int64, u domain.QuoteUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	if u.Text == nil {
		return nil
	}

	return v.checkUnique(ctx, *u.Text, id)
}

func (v *QuoteValidator) checkUnique(ctx context.Context, text string, excludeID int64) error {
	exists, err := v.quotes.ExistsByText(ctx, text, excludeID)
	if err != nil {
		requestLogger(ctx, v.logger, "app.QuoteValidator").ErrorContext(ctx, "quote existence check failed",
			slog.Any("error", err),
		)

		return domain.NewInternalError(MsgQuoteCheckFailed, err)
	}

	if exists {
		return domain.NewConflictError(domain.EntityQuote, domain.MsgDuplicateText)
	}

	return nil
}
