package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidURL is returned before any I/O when the target is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrForbiddenHost is returned when the host is not on the configured allow-list.
	ErrForbiddenHost = errors.New("host not allowed")
	// ErrNetwork wraps transport-level failures (DNS, timeout, connection reset).
	ErrNetwork = errors.New("network error")
	// ErrNotFound is returned by recipe lookups for unknown ids.
	ErrNotFound = errors.New("not found")
)

// UpstreamError reports a non-2xx response from the recipe site.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Upstream-Fehler %d", e.Status)
}

// PartialSaveError reports ingredient or step inserts that failed after the
// recipe row itself was stored. The recipe row is not rolled back.
type PartialSaveError struct {
	RecipeID string
	Failures map[string]error // keyed by entity: "ingredients", "steps"
}

func (e *PartialSaveError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, entity := range []string{"ingredients", "steps"} {
		if err, ok := e.Failures[entity]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", entity, err))
		}
	}
	return fmt.Sprintf("recipe %s saved partially: %s", e.RecipeID, strings.Join(parts, "; "))
}

// Entities returns the names of the entities that failed, in a stable order.
func (e *PartialSaveError) Entities() []string {
	var out []string
	for _, entity := range []string{"ingredients", "steps"} {
		if _, ok := e.Failures[entity]; ok {
			out = append(out, entity)
		}
	}
	return out
}
