package contextutil

import (
	"context"
	"time"
)

// NewRemoteContext creates a context with a timeout for remote storage
// operations.
func NewRemoteContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
