package extractor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
)

const testSourceURL = "https://thehiddenveggies.com/savory-vegan-muffins/"

func texts(items []entity.RecipeItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}

func assertPositions(t *testing.T, items []entity.RecipeItem) {
	t.Helper()
	for i, it := range items {
		assert.Equal(t, i+1, it.Position, "item %q", it.Text)
	}
}

func TestExtract_PluginIngredients(t *testing.T) {
	html := `<!DOCTYPE html><html><head><title>Muffins | Blog</title></head><body>
		<h1>  Vegan
		Muffins </h1>
		<ul class="wprm-recipe-ingredients">
			<li class="wprm-recipe-ingredient"><span class="wprm-recipe-ingredient-amount">200</span> <span class="wprm-recipe-ingredient-unit">g</span> flour</li>
			<li class="wprm-recipe-ingredient">   </li>
			<li class="wprm-recipe-ingredient">1 cup oat milk</li>
			<li class="wprm-recipe-ingredient">salt to taste</li>
		</ul>
	</body></html>`

	got := Extract(testSourceURL, html)

	assert.Equal(t, "Vegan Muffins", got.Title)
	assert.False(t, got.Degraded)
	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, []string{"200 g flour", "1 cup oat milk", "salt to taste"}, texts(got.Ingredients))
	assertPositions(t, got.Ingredients)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Importiert von "+testSourceURL, *got.Description)
}

func TestExtract_FallbackIngredientsUseQuantityHeuristic(t *testing.T) {
	html := `<html><body><h1>Brot</h1>
		<ul>
			<li>200g flour</li>
			<li>click here</li>
			<li>eine Prise Salz</li>
			<li>Zwei EL Öl</li>
			<li>½ Zitrone</li>
			<li>Pfeffer nach Geschmack</li>
		</ul>
	</body></html>`

	got := Extract(testSourceURL, html)

	assert.Equal(t, []string{"200g flour", "eine Prise Salz", "Zwei EL Öl", "½ Zitrone"}, texts(got.Ingredients))
	assertPositions(t, got.Ingredients)
}

func TestExtract_OnlyFlourLineKept(t *testing.T) {
	html := `<html><body><ul><li>200g flour</li><li>click here</li></ul></body></html>`

	got := Extract(testSourceURL, html)

	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, entity.RecipeItem{Text: "200g flour", Position: 1}, got.Ingredients[0])
}

func TestExtract_OtherPluginMarkers(t *testing.T) {
	html := `<html><body>
		<div class="tasty-recipes-ingredients"><ul><li>2 Bananen</li><li>Zimt</li></ul></div>
		<div class="tasty-recipes-instructions"><ol><li>Bananen zerdrücken.</li><li>Zimt unterrühren.</li></ol></div>
	</body></html>`

	got := Extract(testSourceURL, html)

	assert.Equal(t, []string{"2 Bananen", "Zimt"}, texts(got.Ingredients))
	assert.Equal(t, []string{"Bananen zerdrücken.", "Zimt unterrühren."}, texts(got.Steps))
}

func TestExtract_PluginSteps(t *testing.T) {
	html := `<html><body>
		<ul class="wprm-recipe-instructions">
			<li class="wprm-recipe-instruction"><div class="wprm-recipe-instruction-text">Preheat the oven to 180°C.</div></li>
			<li class="wprm-recipe-instruction"><div class="wprm-recipe-instruction-text"></div></li>
			<li class="wprm-recipe-instruction"><div class="wprm-recipe-instruction-text">Mix everything.</div></li>
		</ul>
		<ol><li>Unrelated ordered list entry</li></ol>
	</body></html>`

	got := Extract(testSourceURL, html)

	assert.Equal(t, []string{"Preheat the oven to 180°C.", "Mix everything."}, texts(got.Steps))
	assertPositions(t, got.Steps)
}

func TestExtract_FallbackStepsFilterShortEntries(t *testing.T) {
	html := `<html><body>
		<ol>
			<li>•</li>
			<li>Mehl und Zucker mischen.</li>
			<li>ok</li>
			<li>Im Ofen 20 Minuten backen.</li>
		</ol>
	</body></html>`

	got := Extract(testSourceURL, html)

	assert.Equal(t, []string{"Mehl und Zucker mischen.", "Im Ofen 20 Minuten backen."}, texts(got.Steps))
	assertPositions(t, got.Steps)
}

func TestExtract_FallbackStepsInstructionContainer(t *testing.T) {
	html := `<html><body>
		<div class="recipe-instructions">
			<p>Teig kneten und ruhen lassen.</p>
			<p>Brötchen formen und backen.</p>
		</div>
		<div id="method-notes">Alles am Vortag vorbereiten.</div>
	</body></html>`

	got := Extract(testSourceURL, html)

	assert.Equal(t, []string{
		"Teig kneten und ruhen lassen.",
		"Brötchen formen und backen.",
		"Alles am Vortag vorbereiten.",
	}, texts(got.Steps))
}

func TestExtract_TitleFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "heading wins",
			html: `<html><head><meta property="og:title" content="OG"><title>Doc</title></head><body><h1>Heading</h1></body></html>`,
			want: "Heading",
		},
		{
			name: "empty heading falls through to og:title",
			html: `<html><head><meta property="og:title" content=" OG Title "><title>Doc</title></head><body><h1> </h1></body></html>`,
			want: "OG Title",
		},
		{
			name: "document title",
			html: `<html><head><title> Doc Title </title></head><body></body></html>`,
			want: "Doc Title",
		},
		{
			name: "default",
			html: `<html><body><p>nothing</p></body></html>`,
			want: UnknownTitle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(testSourceURL, tt.html).Title)
		})
	}
}

func TestExtract_ImageFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *string
	}{
		{
			name: "og:image",
			html: `<html><head><meta property="og:image" content="https://cdn.example.com/og.jpg"></head>
				<body><img src="/logo.png"><article><img src="/a.jpg"></article></body></html>`,
			want: strPtr("https://cdn.example.com/og.jpg"),
		},
		{
			name: "content region before first image",
			html: `<html><body><header><img src="/logo.png"></header>
				<article><img src="data:image/gif;base64,R0lGOD" data-src="/lazy.jpg"></article></body></html>`,
			want: strPtr("https://thehiddenveggies.com/lazy.jpg"),
		},
		{
			name: "first image anywhere",
			html: `<html><body><div><img src="pic.jpg"></div></body></html>`,
			want: strPtr("https://thehiddenveggies.com/savory-vegan-muffins/pic.jpg"),
		},
		{
			name: "none",
			html: `<html><body><p>no images</p></body></html>`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(testSourceURL, tt.html).ImageURL)
		})
	}
}

func TestExtract_SentinelsWhenNothingFound(t *testing.T) {
	got := Extract(testSourceURL, `<html><body><h1>Leer</h1></body></html>`)

	assert.False(t, got.Degraded)
	assert.Equal(t, []entity.RecipeItem{{Text: NoIngredients, Position: 1}}, got.Ingredients)
	assert.Equal(t, []entity.RecipeItem{{Text: NoSteps, Position: 1}}, got.Steps)
}

func TestExtract_PlaceholderWithoutDocumentRoot(t *testing.T) {
	for _, input := range []string{"", "   ", `{"error":"Domain nicht erlaubt"}`, "plain text body"} {
		got := Extract(testSourceURL, input)

		assert.True(t, got.Degraded, input)
		assert.Equal(t, NotFoundTitle, got.Title)
		assert.NotNil(t, got.Ingredients)
		assert.Empty(t, got.Ingredients)
		assert.NotNil(t, got.Steps)
		assert.Empty(t, got.Steps)
		assert.Nil(t, got.ImageURL)
	}
}

func TestExtract_MalformedMarkup(t *testing.T) {
	html := `<html><body><div class="x"><ul><li>1 cup sugar<li>2 eggs</ul><p>unclosed <b>bold`

	var got *entity.ExtractedRecipe
	require.NotPanics(t, func() { got = Extract(testSourceURL, html) })

	assert.Equal(t, []string{"1 cup sugar", "2 eggs"}, texts(got.Ingredients))
}

func TestExtract_Deterministic(t *testing.T) {
	html := `<html><head><meta property="og:image" content="/og.jpg"></head><body><h1>Suppe</h1>
		<ul><li>1 l Brühe</li><li>2 Karotten</li></ul><ol><li>Alles kochen lassen.</li></ol></body></html>`

	first, err := json.Marshal(Extract(testSourceURL, html))
	require.NoError(t, err)
	second, err := json.Marshal(Extract(testSourceURL, html))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func strPtr(s string) *string { return &s }
