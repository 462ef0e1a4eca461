package shortener

import "context"

// Repository defines the persistence operations for short links.
type Repository interface {
	// Create inserts a new record and returns it with Handle and CreatedAt assigned.
	// Returns ErrDuplicateKey if the code is already taken.
	Create(ctx context.Context, code Code, longURL string) (*ShortLink, error)

	// FindByCode returns the record with exactly this code, or ErrNotFound.
	FindByCode(ctx context.Context, code Code) (*ShortLink, error)

	// List returns every record, most recently created first.
	List(ctx context.Context) ([]*ShortLink, error)

	// DeleteByHandle removes the record and returns it, or ErrNotFound.
	DeleteByHandle(ctx context.Context, handle Handle) (*ShortLink, error)
}
