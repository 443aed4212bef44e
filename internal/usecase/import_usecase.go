package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/extractor"
	"github.com/Birgy1002/rezept-pwa/internal/repository"
	"github.com/Birgy1002/rezept-pwa/pkg/metrics"
)

// RecipeImporter fetches recipe pages and turns them into ExtractedRecipes.
type RecipeImporter interface {
	// FetchPage returns the raw upstream page, for callers that parse it themselves.
	FetchPage(ctx context.Context, url string) (*entity.Page, error)
	// ImportRecipe fetches url and extracts it. Fetch failures are returned
	// unchanged and extraction never runs; a placeholder record is a success.
	ImportRecipe(ctx context.Context, url string) (*entity.ExtractedRecipe, error)
}

type importUseCase struct {
	fetcher repository.PageFetcher
	logger  *zap.Logger
}

// NewRecipeImporter creates the import orchestrator.
func NewRecipeImporter(fetcher repository.PageFetcher, logger *zap.Logger) RecipeImporter {
	return &importUseCase{fetcher: fetcher, logger: logger}
}

func (uc *importUseCase) FetchPage(ctx context.Context, rawURL string) (*entity.Page, error) {
	startTime := time.Now()
	page, err := uc.fetcher.Fetch(ctx, rawURL)
	duration := time.Since(startTime)

	// Rejected URLs never reached the network, so they are not timed.
	if !errors.Is(err, repository.ErrInvalidURL) && !errors.Is(err, repository.ErrForbiddenHost) {
		metrics.FetchDuration.WithLabelValues(hostOf(rawURL)).Observe(duration.Seconds())
	}
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(outcomeOf(err)).Inc()
		uc.logger.Warn("fetching recipe page failed", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("recipe page fetched",
		zap.String("url", rawURL),
		zap.Int("status", page.StatusCode),
		zap.Int64("duration_ms", duration.Milliseconds()),
	)
	return page, nil
}

func (uc *importUseCase) ImportRecipe(ctx context.Context, rawURL string) (*entity.ExtractedRecipe, error) {
	page, err := uc.FetchPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	recipe := extractor.Extract(rawURL, page.Body)
	if recipe.Degraded {
		metrics.ExtractDegraded.Inc()
		metrics.ImportsTotal.WithLabelValues("degraded").Inc()
		uc.logger.Warn("no recipe markup found, returning placeholder",
			zap.String("url", rawURL),
			zap.String("content_type", page.ContentType),
		)
		return recipe, nil
	}

	metrics.ImportsTotal.WithLabelValues("success").Inc()
	uc.logger.Info("recipe extracted",
		zap.String("url", rawURL),
		zap.String("title", recipe.Title),
		zap.Int("ingredients", len(recipe.Ingredients)),
		zap.Int("steps", len(recipe.Steps)),
	)
	return recipe, nil
}

func outcomeOf(err error) string {
	var upstream *repository.UpstreamError
	switch {
	case errors.Is(err, repository.ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, repository.ErrForbiddenHost):
		return "forbidden_host"
	case errors.As(err, &upstream):
		return "upstream"
	case errors.Is(err, repository.ErrNetwork):
		return "network"
	default:
		return "unknown"
	}
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "unknown"
}
