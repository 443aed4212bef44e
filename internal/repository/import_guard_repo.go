package repository

import (
	"context"
	"time"
)

// ImportGuardRepository remembers recently imported URLs.
type ImportGuardRepository interface {
	// MarkImported records url as imported for the given window.
	MarkImported(ctx context.Context, url string, window time.Duration) error
	// IsImported checks if url was imported inside its window.
	IsImported(ctx context.Context, url string) (bool, error)
	// Forget removes url from the guard, used for forced re-imports.
	Forget(ctx context.Context, url string) error
	Ping(ctx context.Context) error
}
