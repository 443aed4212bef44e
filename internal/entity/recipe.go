package entity

import "time"

// RecipeItem is a single ingredient line or preparation step.
// Position is 1-based and contiguous in extraction order.
type RecipeItem struct {
	Text     string `json:"text" yaml:"text" validate:"required"`
	Position int    `json:"position" yaml:"position" validate:"gte=1"`
}

// ExtractedRecipe is the normalized result of scraping one recipe page.
// It is produced fresh per import and never mutated afterwards.
type ExtractedRecipe struct {
	SourceURL   string       `json:"source_url" yaml:"source_url"`
	Title       string       `json:"title" yaml:"title"`
	Description *string      `json:"description" yaml:"description"`
	ImageURL    *string      `json:"image_url" yaml:"image_url"`
	Ingredients []RecipeItem `json:"ingredients" yaml:"ingredients"`
	Steps       []RecipeItem `json:"steps" yaml:"steps"`
	// Degraded is set when the page had no usable HTML and a placeholder was returned.
	Degraded bool `json:"degraded" yaml:"degraded"`
}

// StoredRecipe mirrors a row of the `recipes` table together with its
// ingredient and step rows.
type StoredRecipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	ImageURL    *string      `json:"image_url"`
	Servings    *int         `json:"servings"`
	CreatedAt   time.Time    `json:"created_at"`
	Ingredients []RecipeItem `json:"-"`
	Steps       []RecipeItem `json:"-"`
}
