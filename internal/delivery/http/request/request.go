package request

import (
	"strings"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/extractor"
)

// ImportRecipeRequest is the body of POST /api/recipes/import.
type ImportRecipeRequest struct {
	URL   string `json:"url" validate:"required,url"`
	Force bool   `json:"force"`
}

// ItemRequest is one ingredient or step of a confirmed preview.
// Blank items are dropped by ToEntity.
type ItemRequest struct {
	Text     string `json:"text"`
	Position int    `json:"position" validate:"omitempty,gte=1"`
}

// SaveRecipeRequest is the body of POST /api/recipes: a preview the user
// reviewed and possibly edited.
type SaveRecipeRequest struct {
	SourceURL   string        `json:"source_url" validate:"omitempty,url"`
	Title       string        `json:"title" validate:"required"`
	Description *string       `json:"description"`
	ImageURL    *string       `json:"image_url" validate:"omitempty,url"`
	Ingredients []ItemRequest `json:"ingredients" validate:"dive"`
	Steps       []ItemRequest `json:"steps" validate:"dive"`
}

// ToEntity converts the request. Item texts are trimmed, blank items are
// dropped, the rest is renumbered 1..n in the order the client sent them, and
// an empty list gets the same sentinel item an extraction would produce.
func (r SaveRecipeRequest) ToEntity() *entity.ExtractedRecipe {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = extractor.UnknownTitle
	}
	return &entity.ExtractedRecipe{
		SourceURL:   r.SourceURL,
		Title:       title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Ingredients: extractor.Items(texts(r.Ingredients), extractor.NoIngredients),
		Steps:       extractor.Items(texts(r.Steps), extractor.NoSteps),
	}
}

func texts(in []ItemRequest) []string {
	out := make([]string, 0, len(in))
	for _, it := range in {
		out = append(out, it.Text)
	}
	return out
}
