package dto

import (
	"time"

	"github.com/jsamuelsen/quotes-service/internal/domain"
)

// QuoteIDParam is the :id path parameter of the quote routes.
type QuoteIDParam struct {
	ID int64 `uri:"id" json:"id" validate:"gt=0"`
}

// CreateQuoteRequest is the body of POST /api/quotes.
// Empty fields are treated as absent.
type CreateQuoteRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// ToDomain converts the request to a create payload.
func (r CreateQuoteRequest) ToDomain() domain.NewQuote {
	return domain.NewQuote{Text: r.Text, Author: r.Author}
}

// UpdateQuoteRequest is the body of PUT /api/quotes/:id.
// Empty fields are left untouched.
type UpdateQuoteRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// ToDomain converts the request to a partial update.
func (r UpdateQuoteRequest) ToDomain() domain.QuoteUpdate {
	return domain.NewQuoteUpdate(r.Text, r.Author)
}

// QuoteResponse is a stored quote.
type QuoteResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewQuoteResponse converts a domain quote to its response form.
func NewQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:        q.ID,
		Text:      q.Text,
		Author:    q.Author,
		CreatedAt: q.CreatedAt.UTC(),
		UpdatedAt: q.UpdatedAt.UTC(),
	}
}

// NewQuoteListResponse converts quotes to a response array. It is never nil
// so that an empty store renders as [].
func NewQuoteListResponse(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		out = append(out, NewQuoteResponse(&quotes[i]))
	}

	return out
}

// CreatedQuoteResponse is the body of a successful create.
type CreatedQuoteResponse struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

// NewCreatedQuoteResponse converts a created quote to its response form.
func NewCreatedQuoteResponse(q *domain.Quote) CreatedQuoteResponse {
	return CreatedQuoteResponse{ID: q.ID, Text: q.Text, Author: q.Author}
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
