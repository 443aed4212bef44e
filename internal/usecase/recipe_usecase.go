package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/repository"
)

var (
	ErrRecentlyImported = errors.New("URL has been imported recently and force is false")
)

const defaultListLimit = 100

// RecipeManager persists imported recipes and serves the stored catalogue.
type RecipeManager interface {
	// Import fetches, extracts and stores req.URL in one step.
	Import(ctx context.Context, req entity.ImportRequest) (*entity.StoredRecipe, error)
	// Save stores a recipe the client confirmed, e.g. an edited preview.
	Save(ctx context.Context, recipe *entity.ExtractedRecipe) (*entity.StoredRecipe, error)
	Get(ctx context.Context, id string) (*entity.StoredRecipe, error)
	List(ctx context.Context, limit int) ([]*entity.StoredRecipe, error)
}

type recipeManagerUseCase struct {
	importer    RecipeImporter
	recipeRepo  repository.RecipeRepository
	guardRepo   repository.ImportGuardRepository
	dedupWindow time.Duration
	logger      *zap.Logger
}

// NewRecipeManager creates a new RecipeManager use case.
func NewRecipeManager(
	importer RecipeImporter,
	recipeRepo repository.RecipeRepository,
	guardRepo repository.ImportGuardRepository,
	dedupWindow time.Duration,
	logger *zap.Logger,
) RecipeManager {
	return &recipeManagerUseCase{
		importer:    importer,
		recipeRepo:  recipeRepo,
		guardRepo:   guardRepo,
		dedupWindow: dedupWindow,
		logger:      logger,
	}
}

func (uc *recipeManagerUseCase) Import(ctx context.Context, req entity.ImportRequest) (*entity.StoredRecipe, error) {
	if req.Force {
		if err := uc.guardRepo.Forget(ctx, req.URL); err != nil {
			uc.logger.Warn("failed to clear import guard for forced import", zap.String("url", req.URL), zap.Error(err))
			// Continue anyway, the guard is advisory
		}
	} else {
		imported, err := uc.guardRepo.IsImported(ctx, req.URL)
		if err != nil {
			uc.logger.Warn("import guard unavailable, importing anyway", zap.String("url", req.URL), zap.Error(err))
		} else if imported {
			return nil, ErrRecentlyImported
		}
	}

	recipe, err := uc.importer.ImportRecipe(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	stored, err := uc.Save(ctx, recipe)
	if stored == nil {
		return nil, err
	}

	if markErr := uc.guardRepo.MarkImported(ctx, req.URL, uc.dedupWindow); markErr != nil {
		// The recipe is stored; at worst the next import is not flagged as a duplicate.
		uc.logger.Error("failed to mark URL as imported", zap.String("url", req.URL), zap.Error(markErr))
	}
	return stored, err
}

func (uc *recipeManagerUseCase) Save(ctx context.Context, recipe *entity.ExtractedRecipe) (*entity.StoredRecipe, error) {
	stored, err := uc.recipeRepo.Save(ctx, recipe)
	if err != nil {
		var partial *repository.PartialSaveError
		if errors.As(err, &partial) && stored != nil {
			uc.logger.Warn("recipe saved without some child rows",
				zap.String("recipe_id", partial.RecipeID),
				zap.Strings("failed", partial.Entities()),
				zap.Error(err),
			)
			return stored, err
		}
		return nil, fmt.Errorf("failed to save recipe %q: %w", recipe.Title, err)
	}

	uc.logger.Info("recipe saved", zap.String("recipe_id", stored.ID), zap.String("title", stored.Title))
	return stored, nil
}

func (uc *recipeManagerUseCase) Get(ctx context.Context, id string) (*entity.StoredRecipe, error) {
	return uc.recipeRepo.FindByID(ctx, id)
}

func (uc *recipeManagerUseCase) List(ctx context.Context, limit int) ([]*entity.StoredRecipe, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return uc.recipeRepo.List(ctx, limit)
}
