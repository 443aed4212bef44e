package repository

import (
	"context"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
)

// RecipeRepository persists and reads recipes with their ingredients and steps.
type RecipeRepository interface {
	// Save inserts a new recipe and its child rows. Child failures are reported
	// as *PartialSaveError while the returned recipe is still valid.
	Save(ctx context.Context, recipe *entity.ExtractedRecipe) (*entity.StoredRecipe, error)
	// FindByID returns the recipe with ingredients and steps ordered by position.
	FindByID(ctx context.Context, id string) (*entity.StoredRecipe, error)
	// List returns recipes ordered by created_at, newest first.
	List(ctx context.Context, limit int) ([]*entity.StoredRecipe, error)
	Ping(ctx context.Context) error
}
