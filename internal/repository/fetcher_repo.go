package repository

import (
	"context"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
)

// PageFetcher retrieves a single external page.
type PageFetcher interface {
	// Fetch issues exactly one GET for url unless the url is rejected up front
	// with ErrInvalidURL or ErrForbiddenHost.
	Fetch(ctx context.Context, url string) (*entity.Page, error)
}
