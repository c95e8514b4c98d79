// Package domain contains core business entities and rules.
package domain

import (
	"time"
	"unicode/utf8"
)

// Field bounds for quotes, counted in characters.
const (
	QuoteTextMinLength   = 10
	QuoteTextMaxLength   = 500
	QuoteAuthorMinLength = 3
	QuoteAuthorMaxLength = 50

	// DefaultAuthor is stored when a quote is created without an author.
	DefaultAuthor = "Unknown"
)

// Client-facing validation messages.
const (
	MsgCreateFieldsRequired = "Quote text and author are required."
	MsgUpdateFieldsRequired = "Quote text and / or author are required."
	MsgTextLength           = "Quote text should be between 10 and 500 characters."
	MsgAuthorLength         = "Author name should be between 3 and 50 characters."
	MsgDuplicateText        = "Quote with the same text already exists."
)

// EntityQuote names the quote entity in domain errors.
const EntityQuote = "quote"

// Quote represents a quotation with its author.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is the store-assigned identity.
	ID int64

	// Text is the quotation itself. Unique across all quotes.
	Text string

	// Author is who said or wrote the quote.
	Author string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewQuote is the payload of a create request.
// Empty fields are treated as absent.
type NewQuote struct {
	Text   string
	Author string
}

// Normalize applies the default author.
func (n NewQuote) Normalize() NewQuote {
	if n.Author == "" {
		n.Author = DefaultAuthor
	}

	return n
}

// QuoteUpdate is a partial update. A nil field is left untouched.
type QuoteUpdate struct {
	Text   *string
	Author *string
}

// IsEmpty reports whether the update carries no field at all.
func (u QuoteUpdate) IsEmpty() bool {
	return u.Text == nil && u.Author == nil
}

// NewQuoteUpdate builds an update from raw request values, mapping empty
// strings to absent fields.
func NewQuoteUpdate(text, author string) QuoteUpdate {
	var u QuoteUpdate
	if text != "" {
		u.Text = &text
	}

	if author != "" {
		u.Author = &author
	}

	return u
}

// ValidateText checks the length bounds of a quote text.
func ValidateText(text string) error {
	if !withinBounds(text, QuoteTextMinLength, QuoteTextMaxLength) {
		return NewValidationErrorWithValue("text", MsgTextLength, utf8.RuneCountInString(text))
	}

	return nil
}

// ValidateAuthor checks the length bounds of an author name.
func ValidateAuthor(author string) error {
	if !withinBounds(author, QuoteAuthorMinLength, QuoteAuthorMaxLength) {
		return NewValidationErrorWithValue("author", MsgAuthorLength, utf8.RuneCountInString(author))
	}

	return nil
}

// Validate checks presence and length rules of a create payload, in that order.
// Uniqueness needs the store and is checked by the application layer.
func (n NewQuote) Validate() error {
	n = n.Normalize()
	if n.Text == "" {
		return NewValidationError("", MsgCreateFieldsRequired)
	}

	if err := ValidateText(n.Text); err != nil {
		return err
	}

	return ValidateAuthor(n.Author)
}

// Validate checks presence and length rules of an update, in that order.
func (u QuoteUpdate) Validate() error {
	if u.IsEmpty() {
		return NewValidationError("", MsgUpdateFieldsRequired)
	}

	if u.Text != nil {
		if err := ValidateText(*u.Text); err != nil {
			return err
		}
	}

	if u.Author != nil {
		return ValidateAuthor(*u.Author)
	}

	return nil
}

func withinBounds(s string, minLen, maxLen int) bool {
	n := utf8.RuneCountInString(s)
	return n >= minLen && n <= maxLen
}
