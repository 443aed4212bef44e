package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/delivery/http/request"
	"github.com/Birgy1002/rezept-pwa/internal/delivery/http/response"
	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/repository"
	"github.com/Birgy1002/rezept-pwa/internal/usecase"
)

const (
	msgMissingURL      = "Parameter ?url fehlt"
	msgInvalidURL      = "Ungültige URL"
	msgForbiddenHost   = "Domain nicht erlaubt"
	msgFetchFailed     = "Fehler beim Abrufen der Seite"
	msgInvalidBody     = "Ungültiger Request-Body"
	msgInvalidID       = "Ungültige Rezept-ID"
	msgNotFound        = "Rezept nicht gefunden"
	msgSaveFailed      = "Fehler beim Speichern des Rezepts"
	msgLoadFailed      = "Fehler beim Laden der Rezepte"
	msgRecentImport    = "Rezept wurde kürzlich importiert"
	healthCheckTimeout = 2 * time.Second
)

// Pinger is implemented by every backing store the health check reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	importer usecase.RecipeImporter
	recipes  usecase.RecipeManager
	health   map[string]Pinger
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(
	importer usecase.RecipeImporter,
	recipes usecase.RecipeManager,
	health map[string]Pinger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		importer: importer,
		recipes:  recipes,
		health:   health,
		validate: validator.New(),
		logger:   logger,
	}
}

// HandleProxy serves GET /proxy?url=. The page is passed through as HTML
// unless the client asks for JSON with ?format=json or an Accept header,
// in which case the extracted recipe is returned.
func (h *Handler) HandleProxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, msgMissingURL, http.StatusBadRequest)
		return
	}

	if wantsJSON(r) {
		h.writePreview(w, r, rawURL)
		return
	}

	page, err := h.importer.FetchPage(r.Context(), rawURL)
	if err != nil {
		h.writeImportError(w, rawURL, err)
		return
	}

	contentType := page.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page.Body)); err != nil {
		h.logger.Error("failed to write proxied page", zap.String("url", rawURL), zap.Error(err))
	}
}

// HandlePreview serves GET /api/import?url=: extraction without persistence.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, msgMissingURL, http.StatusBadRequest)
		return
	}
	h.writePreview(w, r, rawURL)
}

func (h *Handler) writePreview(w http.ResponseWriter, r *http.Request, rawURL string) {
	recipe, err := h.importer.ImportRecipe(r.Context(), rawURL)
	if err != nil {
		h.writeImportError(w, rawURL, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.FromExtracted(recipe))
}

// HandleImport serves POST /api/recipes/import.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req request.ImportRecipeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	stored, err := h.recipes.Import(r.Context(), entity.ImportRequest{URL: req.URL, Force: req.Force})
	h.writeStored(w, req.URL, stored, err)
}

// HandleSave serves POST /api/recipes with a confirmed preview.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req request.SaveRecipeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	stored, err := h.recipes.Save(r.Context(), req.ToEntity())
	h.writeStored(w, req.SourceURL, stored, err)
}

func (h *Handler) HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recipes, err := h.recipes.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list recipes", zap.Error(err))
		h.writeJSONError(w, msgLoadFailed, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.FromStoredList(recipes))
}

func (h *Handler) HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.writeJSONError(w, msgInvalidID, http.StatusBadRequest)
		return
	}

	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, msgNotFound, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load recipe", zap.String("id", id), zap.Error(err))
		h.writeJSONError(w, msgLoadFailed, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.FromStored(recipe))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	healthStatus := make(map[string]string, len(h.health))
	status := http.StatusOK
	for name, p := range h.health {
		if err := p.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			h.logger.Error("health check failed", zap.String("component", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	h.writeJSON(w, status, healthStatus)
}

func (h *Handler) writeStored(w http.ResponseWriter, sourceURL string, stored *entity.StoredRecipe, err error) {
	var partial *repository.PartialSaveError
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusCreated, response.FromStored(stored))
	case errors.As(err, &partial) && stored != nil:
		resp := response.FromStored(stored)
		for _, name := range partial.Entities() {
			resp.Warnings = append(resp.Warnings, name+" konnten nicht gespeichert werden")
		}
		h.writeJSON(w, http.StatusCreated, resp)
	case errors.Is(err, usecase.ErrRecentlyImported):
		h.writeJSONError(w, msgRecentImport, http.StatusConflict)
	case isFetchError(err):
		h.writeImportError(w, sourceURL, err)
	default:
		h.logger.Error("failed to save recipe", zap.String("url", sourceURL), zap.Error(err))
		h.writeJSONError(w, msgSaveFailed, http.StatusInternalServerError)
	}
}

// writeImportError maps the fetch error taxonomy onto HTTP statuses.
// Upstream error statuses are forwarded as-is, anything below 400 becomes 502.
func (h *Handler) writeImportError(w http.ResponseWriter, rawURL string, err error) {
	var upstream *repository.UpstreamError
	switch {
	case errors.Is(err, repository.ErrInvalidURL):
		h.writeJSONError(w, msgInvalidURL, http.StatusBadRequest)
	case errors.Is(err, repository.ErrForbiddenHost):
		h.writeJSONError(w, msgForbiddenHost, http.StatusForbidden)
	case errors.As(err, &upstream):
		status := upstream.Status
		if status < http.StatusBadRequest {
			// 1xx and 3xx responses cannot carry the JSON error body.
			status = http.StatusBadGateway
		}
		h.writeJSONError(w, upstream.Error(), status)
	default:
		h.logger.Error("import failed", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, msgFetchFailed, http.StatusInternalServerError)
	}
}

func isFetchError(err error) bool {
	var upstream *repository.UpstreamError
	return errors.Is(err, repository.ErrInvalidURL) ||
		errors.Is(err, repository.ErrForbiddenHost) ||
		errors.Is(err, repository.ErrNetwork) ||
		errors.As(err, &upstream)
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeJSONError(w, msgInvalidBody+": "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
