package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/repository"
)

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
}

const (
	insertRecipeSQL = `
		INSERT INTO recipes (id, title, description, image_url, servings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;
	`
	insertIngredientSQL = `INSERT INTO ingredients (recipe_id, name, position) VALUES ($1, $2, $3);`
	insertStepSQL       = `INSERT INTO steps (recipe_id, description, position) VALUES ($1, $2, $3);`

	selectRecipeSQL = `
		SELECT id::text, title, description, image_url, servings, created_at
		FROM recipes
		WHERE id = $1;
	`
	listRecipesSQL = `
		SELECT id::text, title, description, image_url, servings, created_at
		FROM recipes
		ORDER BY created_at DESC
		LIMIT $1;
	`
	selectIngredientsSQL = `SELECT name, position FROM ingredients WHERE recipe_id = $1 ORDER BY position ASC;`
	selectStepsSQL       = `SELECT description, position FROM steps WHERE recipe_id = $1 ORDER BY position ASC;`
)

// RecipeRepoImpl stores recipes in the recipes, ingredients and steps tables.
type RecipeRepoImpl struct {
	db    DB
	newID func() string
}

// NewRecipeRepo creates a new instance of RecipeRepoImpl.
func NewRecipeRepo(db DB) *RecipeRepoImpl {
	return &RecipeRepoImpl{db: db, newID: uuid.NewString}
}

// Save inserts the recipe row, then ingredients and steps as two independent
// batches. A failed batch does not roll back the recipe row; failures are
// reported through *repository.PartialSaveError alongside the stored recipe.
func (r *RecipeRepoImpl) Save(ctx context.Context, recipe *entity.ExtractedRecipe) (*entity.StoredRecipe, error) {
	stored := &entity.StoredRecipe{
		ID:          r.newID(),
		Title:       recipe.Title,
		Description: recipe.Description,
		ImageURL:    recipe.ImageURL,
		Ingredients: recipe.Ingredients,
		Steps:       recipe.Steps,
	}

	err := r.db.QueryRow(ctx, insertRecipeSQL,
		stored.ID,
		stored.Title,
		stored.Description,
		stored.ImageURL,
		stored.Servings,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	failures := make(map[string]error)
	if err := r.insertItems(ctx, insertIngredientSQL, stored.ID, recipe.Ingredients); err != nil {
		failures["ingredients"] = err
	}
	if err := r.insertItems(ctx, insertStepSQL, stored.ID, recipe.Steps); err != nil {
		failures["steps"] = err
	}
	if len(failures) > 0 {
		return stored, &repository.PartialSaveError{RecipeID: stored.ID, Failures: failures}
	}
	return stored, nil
}

func (r *RecipeRepoImpl) insertItems(ctx context.Context, query, recipeID string, items []entity.RecipeItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(query, recipeID, it.Text, it.Position)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// FindByID retrieves a recipe with its ingredients and steps ordered by position.
func (r *RecipeRepoImpl) FindByID(ctx context.Context, id string) (*entity.StoredRecipe, error) {
	recipe, err := scanRecipe(r.db.QueryRow(ctx, selectRecipeSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if recipe.Ingredients, err = r.queryItems(ctx, selectIngredientsSQL, id); err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	if recipe.Steps, err = r.queryItems(ctx, selectStepsSQL, id); err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	return recipe, nil
}

// List returns up to limit recipes, newest first.
func (r *RecipeRepoImpl) List(ctx context.Context, limit int) ([]*entity.StoredRecipe, error) {
	rows, err := r.db.Query(ctx, listRecipesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*entity.StoredRecipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (r *RecipeRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *RecipeRepoImpl) queryItems(ctx context.Context, query, recipeID string) ([]entity.RecipeItem, error) {
	rows, err := r.db.Query(ctx, query, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []entity.RecipeItem{}
	for rows.Next() {
		var it entity.RecipeItem
		if err := rows.Scan(&it.Text, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanRecipe(row pgx.Row) (*entity.StoredRecipe, error) {
	var (
		recipe    entity.StoredRecipe
		createdAt time.Time
	)
	if err := row.Scan(
		&recipe.ID,
		&recipe.Title,
		&recipe.Description,
		&recipe.ImageURL,
		&recipe.Servings,
		&createdAt,
	); err != nil {
		return nil, err
	}
	recipe.CreatedAt = createdAt
	return &recipe, nil
}
