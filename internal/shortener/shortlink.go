package shortener

import "time"

// Code is the public short identifier embedded in a short URL path.
type Code string

// Handle is the storage-assigned identity of a record. It is only used for deletion
// and never appears in a redirect path.
type Handle string

// ShortLink pairs a short code with the long URL it redirects to.
type ShortLink struct {
	Handle    Handle
	Code      Code
	LongURL   string
	ShortURL  string // derived from the base URL, not persisted
	CreatedAt time.Time
}
