// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate use cases (issue tokens, validate and write quotes)
//   - Translate store failures into client-safe internal errors
//   - Log and count business events
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters/http)
//   - SQL (that's adapters/store)
//   - Field rules (that's the domain layer)
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotes-service/internal/platform/logging"
)

// Generic per-operation messages for store failures.
const (
	MsgTokenCheckFailed   = "Failed to check token existence."
	MsgQuoteCheckFailed   = "Failed to check quote existence."
	MsgFetchFailed        = "Failed to fetch quotes."
	MsgInsertFailed       = "Failed to insert quote."
	MsgUpdateFailed       = "Failed to update quote."
	MsgDeleteAllFailed    = "Failed to delete quotes."
	MsgDeleteFailed       = "Failed to delete quote."
	MsgTokenInsertFailed  = "Failed to insert token."
	MsgTokenRevokeFailed  = "Failed to update token."
	MsgTokenMissing       = "Unauthorized: Bearer token is missing."
	MsgTokenUnknown       = "Token does not exist. You can generate one at /api/tokens via GET request."
	MsgQuoteDeleted       = "Quote deleted successfully."
	MsgTokenRevoked       = "Token successfully deleted."
	msgQuotesDeletedCount = "Successfully deleted %d quotes."
)

// QuotesDeletedMessage renders the bulk delete confirmation.
func QuotesDeletedMessage(n int64) string {
	return fmt.Sprintf(msgQuotesDeletedCount, n)
}

// requestLogger prefers the request-scoped logger from ctx, tagged with component.
func requestLogger(ctx context.Context, fallback *slog.Logger, component string) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger.With(slog.String("component", component))
	}

	return fallback
}

func defaultNow(now func() time.Time) func() time.Time {
	if now == nil {
		return func() time.Time { return time.Now().UTC() }
	}

	return now
}
