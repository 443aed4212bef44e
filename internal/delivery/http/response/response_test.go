package response

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
)

func TestFromExtracted_PreviewHasNullID(t *testing.T) {
	body, err := json.Marshal(FromExtracted(&entity.ExtractedRecipe{Title: "Brot"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"recipe": {"id": null, "title": "Brot", "description": null, "image_url": null, "servings": null},
		"ingredients": [],
		"steps": []
	}`, string(body))
}

func TestFromStoredList(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	list := FromStoredList([]*entity.StoredRecipe{
		{ID: "a", Title: "Brot", CreatedAt: created},
		{ID: "b", Title: "Suppe", CreatedAt: created},
	})

	assert.Equal(t, 2, list.Count)
	require.NotNil(t, list.Recipes[1].ID)
	assert.Equal(t, "b", *list.Recipes[1].ID)
	assert.Equal(t, created, *list.Recipes[0].CreatedAt)

	empty, err := json.Marshal(FromStoredList(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipes": [], "count": 0}`, string(empty))
}
