package shortener

import "errors"

var (
	// ErrNotFound is returned when no record matches a code or handle.
	ErrNotFound = errors.New("short link not found")

	// ErrDuplicateKey is returned by a Repository when the code is already taken.
	ErrDuplicateKey = errors.New("short code already exists")

	// ErrInvalidInput matches every *InputError.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError describes why a long URL was rejected. Msg is safe to show to clients.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
