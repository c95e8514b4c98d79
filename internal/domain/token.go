package domain

import "time"

// EntityToken names the token entity in domain errors.
const EntityToken = "token"

// Token is an opaque bearer credential.
// A token is active while DeletedAt is nil; revocation is a soft delete.
type Token struct {
	ID        int64
	Value     string
	CreatedAt time.Time
	DeletedAt *time.Time
}
