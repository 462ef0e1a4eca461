package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key over a sliding window.
type Store interface {
	// Record counts this request and returns how many requests for key fall
	// inside the window ending now, this one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
