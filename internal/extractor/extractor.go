// Package extractor turns a recipe page into an ExtractedRecipe using an
// ordered chain of structural heuristics per field.
package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/pkg/utils"
)

const (
	UnknownTitle     = "Unbekanntes Rezept"
	NotFoundTitle    = "Kein Rezept gefunden"
	NoIngredients    = "Keine Zutaten gefunden"
	NoSteps          = "Keine Schritte gefunden"
	minStepRuneCount = 6
)

// Plugin markers, most common first. WP Recipe Maker is checked first.
var (
	ingredientPluginSelectors = []string{
		".wprm-recipe-ingredient",
		".tasty-recipes-ingredients li",
		".mv-create-ingredients li",
	}
	stepPluginSelectors = []string{
		".wprm-recipe-instruction-text",
		".tasty-recipes-instructions li",
		".mv-create-instructions li",
	}
)

const (
	titleMetaSelector = "meta[property='og:title'], meta[name='og:title']"
	imageMetaSelector = "meta[property='og:image'], meta[name='og:image']"
	contentRegions    = "article, main, [role='main'], .entry-content, .post-content, .wprm-recipe-container"

	ingredientFallbackSelector = "ul li"
	stepFallbackSelector       = "ol li, " +
		"[class*='instruction'] li, [id*='instruction'] li, [class*='method'] li, [id*='method'] li, " +
		"[class*='instruction'] p, [id*='instruction'] p, [class*='method'] p, [id*='method'] p, " +
		"div[class*='instruction'], div[id*='instruction'], div[class*='method'], div[id*='method'], " +
		"section[class*='instruction'], section[id*='instruction'], section[class*='method'], section[id*='method']"
)

// quantityPattern matches a digit, a vulgar fraction, or a measurement unit token.
var quantityPattern = regexp.MustCompile(`(?i)[0-9½⅓⅔¼¾⅛]|\b(?:` +
	`cups?|tassen?|g|gr|gramm|kg|mg|ml|cl|dl|l|liter|litre|oz|ounces?|lbs?|pounds?|` +
	`tsp|tbsp|teaspoons?|tablespoons?|teelöffel|esslöffel|el|tl|` +
	`pinch|prisen?|msp|messerspitzen?|stück|stk|dosen?|bund|becher|pck|päckchen|zehen?|cloves?|cans?` +
	`)\b`)

var rootMarkers = []string{"<html", "<body", "<!doctype html"}

// Extract parses htmlContent fetched from sourceURL. It never fails: input
// without a document root yields the placeholder record with Degraded set.
func Extract(sourceURL, htmlContent string) *entity.ExtractedRecipe {
	if !hasDocumentRoot(htmlContent) {
		return Placeholder(sourceURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return Placeholder(sourceURL)
	}
	doc.Find("script, style, noscript, template").Remove()

	base, _ := url.Parse(sourceURL)
	return &entity.ExtractedRecipe{
		SourceURL:   sourceURL,
		Title:       extractTitle(doc),
		Description: describe(sourceURL),
		ImageURL:    extractImage(doc, base),
		Ingredients: orSentinel(extractIngredients(doc), NoIngredients),
		Steps:       orSentinel(extractSteps(doc), NoSteps),
	}
}

// Placeholder is the savable record returned when a page has no usable HTML.
func Placeholder(sourceURL string) *entity.ExtractedRecipe {
	desc := fmt.Sprintf("Die Seite enthielt kein auswertbares HTML. Importiert von %s", sourceURL)
	return &entity.ExtractedRecipe{
		SourceURL:   sourceURL,
		Title:       NotFoundTitle,
		Description: &desc,
		Ingredients: []entity.RecipeItem{},
		Steps:       []entity.RecipeItem{},
		Degraded:    true,
	}
}

func hasDocumentRoot(htmlContent string) bool {
	if strings.TrimSpace(htmlContent) == "" {
		return false
	}
	lower := strings.ToLower(htmlContent)
	for _, m := range rootMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func describe(sourceURL string) *string {
	d := "Importiert von " + sourceURL
	return &d
}

func extractTitle(doc *goquery.Document) string {
	candidates := []string{
		cleanText(doc.Find("h1").First().Text()),
		metaContent(doc, titleMetaSelector),
		cleanText(doc.Find("title").First().Text()),
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return UnknownTitle
}

func extractImage(doc *goquery.Document, base *url.URL) *string {
	src := metaContent(doc, imageMetaSelector)
	if src == "" {
		src = firstImageSrc(doc.Find(contentRegions).Find("img"))
	}
	if src == "" {
		src = firstImageSrc(doc.Find("img"))
	}
	if src == "" {
		return nil
	}
	if abs, err := utils.ToAbsoluteURL(base, src); err == nil {
		src = abs
	}
	return &src
}

// firstImageSrc returns the first usable source, preferring data-src for lazy-loaded images.
func firstImageSrc(imgs *goquery.Selection) string {
	var found string
	imgs.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
			v := strings.TrimSpace(s.AttrOr(attr, ""))
			if v != "" && !strings.HasPrefix(v, "data:") {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

func extractIngredients(doc *goquery.Document) []entity.RecipeItem {
	if items := firstPluginMatch(doc, ingredientPluginSelectors); len(items) > 0 {
		return items
	}

	var texts []string
	doc.Find(ingredientFallbackSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find("li").Length() > 0 {
			return
		}
		text := cleanText(s.Text())
		if quantityPattern.MatchString(text) {
			texts = append(texts, text)
		}
	})
	return number(texts)
}

func extractSteps(doc *goquery.Document) []entity.RecipeItem {
	if items := firstPluginMatch(doc, stepPluginSelectors); len(items) > 0 {
		return items
	}

	var texts []string
	doc.Find(stepFallbackSelector).Each(func(_ int, s *goquery.Selection) {
		// Keep the innermost match so containers and their items are not both emitted.
		if s.Find(stepFallbackSelector).Length() > 0 {
			return
		}
		text := cleanText(s.Text())
		if utf8.RuneCountInString(text) >= minStepRuneCount {
			texts = append(texts, text)
		}
	})
	return number(texts)
}

func firstPluginMatch(doc *goquery.Document, selectors []string) []entity.RecipeItem {
	for _, sel := range selectors {
		var texts []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			texts = append(texts, cleanText(s.Text()))
		})
		if items := number(texts); len(items) > 0 {
			return items
		}
	}
	return nil
}

// number drops empty entries and assigns contiguous 1-based positions.
func number(texts []string) []entity.RecipeItem {
	items := make([]entity.RecipeItem, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		items = append(items, entity.RecipeItem{Text: t, Position: len(items) + 1})
	}
	return items
}

// Items trims texts, drops empty ones, numbers the rest 1..n and falls back
// to a single sentinel item when nothing is left. Recipes edited by a user
// go through the same rules as extracted ones.
func Items(texts []string, sentinel string) []entity.RecipeItem {
	return orSentinel(number(texts), sentinel)
}

func orSentinel(items []entity.RecipeItem, sentinel string) []entity.RecipeItem {
	if len(items) > 0 {
		return items
	}
	return []entity.RecipeItem{{Text: sentinel, Position: 1}}
}

func metaContent(doc *goquery.Document, selector string) string {
	var content string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content = cleanText(s.AttrOr("content", ""))
		return content == ""
	})
	return content
}

// cleanText collapses runs of whitespace and trims the result.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
