package response

import (
	"time"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
)

// RecipeResponse is the recipe part of an import or catalogue payload.
// ID and CreatedAt are null for previews that were never stored.
type RecipeResponse struct {
	ID          *string    `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	Servings    *int       `json:"servings"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// ItemResponse is one ingredient or step.
type ItemResponse struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// ImportResponse is the JSON body of /proxy, /api/import and the recipe detail endpoints.
type ImportResponse struct {
	Recipe      RecipeResponse `json:"recipe"`
	Ingredients []ItemResponse `json:"ingredients"`
	Steps       []ItemResponse `json:"steps"`
	SourceURL   string         `json:"source_url,omitempty"`
	Degraded    bool           `json:"degraded,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// RecipeListResponse wraps the catalogue listing.
type RecipeListResponse struct {
	Recipes []RecipeResponse `json:"recipes"`
	Count   int              `json:"count"`
}

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromExtracted builds the preview payload of a recipe that has not been stored.
func FromExtracted(r *entity.ExtractedRecipe) ImportResponse {
	return ImportResponse{
		Recipe: RecipeResponse{
			Title:       r.Title,
			Description: r.Description,
			ImageURL:    r.ImageURL,
		},
		Ingredients: items(r.Ingredients),
		Steps:       items(r.Steps),
		SourceURL:   r.SourceURL,
		Degraded:    r.Degraded,
	}
}

// FromStored builds the payload of a persisted recipe.
func FromStored(r *entity.StoredRecipe) ImportResponse {
	return ImportResponse{
		Recipe:      recipe(r),
		Ingredients: items(r.Ingredients),
		Steps:       items(r.Steps),
	}
}

// FromStoredList builds the listing payload. Items are not included.
func FromStoredList(recipes []*entity.StoredRecipe) RecipeListResponse {
	out := RecipeListResponse{Recipes: make([]RecipeResponse, 0, len(recipes))}
	for _, r := range recipes {
		out.Recipes = append(out.Recipes, recipe(r))
	}
	out.Count = len(out.Recipes)
	return out
}

func recipe(r *entity.StoredRecipe) RecipeResponse {
	id := r.ID
	createdAt := r.CreatedAt
	return RecipeResponse{
		ID:          &id,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Servings:    r.Servings,
		CreatedAt:   &createdAt,
	}
}

func items(in []entity.RecipeItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(in))
	for _, it := range in {
		out = append(out, ItemResponse{Text: it.Text, Position: it.Position})
	}
	return out
}
