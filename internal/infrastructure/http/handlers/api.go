// Package handlers provides HTTP handlers for the JSON API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/export"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	"github.com/alchemorsel/marco/pkg/errors"
)

// maxBodyBytes bounds request bodies; recipes are small documents
const maxBodyBytes = 1 << 20

// APIHandlers handles recipe API requests
type APIHandlers struct {
	recipeService inbound.RecipeService
	defaults      RequestDefaults
	logger        *zap.Logger
}

// RequestDefaults fill fields a generate request leaves empty
type RequestDefaults struct {
	Season string
	Region string
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(recipeService inbound.RecipeService, defaults RequestDefaults, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		recipeService: recipeService,
		defaults:      defaults,
		logger:        logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// GenerateRequest is the body of POST /recipes. Unset fields take the
// same defaults as the generate command.
type GenerateRequest struct {
	Description         string   `json:"description"`
	AnxietyFocus        *bool    `json:"anxiety_focus,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	Season              string   `json:"season,omitempty"`
	Region              string   `json:"region,omitempty"`
	Servings            int      `json:"servings,omitempty"`
	Save                *bool    `json:"save,omitempty"`
}

// GenerateResponse is returned by POST /recipes
type GenerateResponse struct {
	RecipeID   uint           `json:"recipe_id,omitempty"`
	Recipe     *recipe.Recipe `json:"recipe"`
	Errors     []string       `json:"errors"`
	Trace      []string       `json:"trace"`
	DurationMS int64          `json:"duration_ms"`
	State      *recipe.State  `json:"state,omitempty"`
}

// VariationRequest is the body of POST /variations
type VariationRequest struct {
	Recipe *recipe.Recipe `json:"recipe"`
	Season string         `json:"season"`
	Region string         `json:"region,omitempty"`
}

// AnalysisRequest is the body of POST /analysis
type AnalysisRequest struct {
	Recipe *recipe.Recipe `json:"recipe"`
}

func (g GenerateRequest) toCommand(defaults RequestDefaults) inbound.GenerateRecipeCommand {
	req := recipe.NewRequest(g.Description)
	if g.AnxietyFocus != nil {
		req.AnxietyFocus = *g.AnxietyFocus
	}
	if len(g.DietaryRestrictions) > 0 {
		req.DietaryRestrictions = g.DietaryRestrictions
	}
	if g.Servings != 0 {
		req.Servings = g.Servings
	}
	req.Season = firstNonEmpty(g.Season, defaults.Season, recipe.SeasonAuto)
	req.Region = firstNonEmpty(g.Region, defaults.Region, recipe.DefaultRegion)
	return inbound.GenerateRecipeCommand{Request: req, Save: g.Save == nil || *g.Save}
}

// GenerateRecipe handles POST /api/v1/recipes. The workflow runs to
// completion before the response is written; ?state=true includes the full
// run state with the expert conversation.
func (h *APIHandlers) GenerateRecipe(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.recipeService.Generate(r.Context(), body.toCommand(h.defaults))
	if res == nil || res.Recipe() == nil {
		if err == nil {
			err = errors.NewGenerationError("workflow", recipe.ErrNoRecipe)
		}
		h.writeError(w, err)
		return
	}
	if err != nil {
		// the recipe exists but could not be stored
		h.writeError(w, err)
		return
	}

	out := GenerateResponse{
		RecipeID:   res.RecipeID,
		Recipe:     res.Recipe(),
		Errors:     res.State.Errors,
		Trace:      res.Trace,
		DurationMS: res.Duration.Milliseconds(),
	}
	if withState, _ := strconv.ParseBool(r.URL.Query().Get("state")); withState {
		out.State = res.State
	}
	status := http.StatusOK
	if res.RecipeID != 0 {
		w.Header().Set("Location", fmt.Sprintf("/api/v1/recipes/%d", res.RecipeID))
		status = http.StatusCreated
	}
	h.writeJSON(w, status, APIResponse{Success: true, Data: out})
}

// ListRecipes handles GET /api/v1/recipes?page=&limit=
func (h *APIHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	params := inbound.PaginationParams{Page: 1, Limit: 20}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			h.writeError(w, errors.NewBadRequestError("page must be a positive integer"))
			return
		}
		params.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			h.writeError(w, errors.NewBadRequestError("limit must be a positive integer"))
			return
		}
		params.Limit = limit
	}

	list, err := h.recipeService.ListRecipes(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: list})
}

// GetRecipe handles GET /api/v1/recipes/{id}
func (h *APIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	dto, ok := h.loadRecipe(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dto})
}

// ExportRecipe handles GET /api/v1/recipes/{id}/export?format=pdf|html
func (h *APIHandlers) ExportRecipe(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatPDF
	}
	dto, ok := h.loadRecipe(w, r)
	if !ok {
		return
	}

	doc, err := h.recipeService.Export(r.Context(), dto.Recipe, format)
	if err != nil {
		h.writeError(w, err)
		return
	}

	contentType := "application/pdf"
	if format == export.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="recipe-%d.%s"`, dto.ID, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.logger.Warn("Failed to write export", zap.Error(err))
	}
}

// Variations handles POST /api/v1/variations
func (h *APIHandlers) Variations(w http.ResponseWriter, r *http.Request) {
	var body VariationRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if body.Season == "" {
		h.writeError(w, errors.NewBadRequestError("season is required"))
		return
	}
	if err := checkRecipe(body.Recipe); err != nil {
		h.writeError(w, err)
		return
	}

	variation, err := h.recipeService.Variations(r.Context(), body.Recipe, body.Season, body.Region)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: variation})
}

// Analyze handles POST /api/v1/analysis
func (h *APIHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var body AnalysisRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if err := checkRecipe(body.Recipe); err != nil {
		h.writeError(w, err)
		return
	}

	analysis, err := h.recipeService.Analyze(r.Context(), body.Recipe)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: analysis})
}

func (h *APIHandlers) loadRecipe(w http.ResponseWriter, r *http.Request) (*inbound.RecipeDTO, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		h.writeError(w, errors.NewBadRequestError("recipe id must be a positive integer"))
		return nil, false
	}
	dto, err := h.recipeService.GetRecipe(r.Context(), uint(id))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return dto, true
}

func checkRecipe(r *recipe.Recipe) error {
	if r == nil || r.Name == "" {
		return errors.NewValidationError("recipe with a name is required")
	}
	r.ApplyDefaults()
	return nil
}

func (h *APIHandlers) decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewBadRequestError("request body is empty")
		}
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

// writeJSON writes a JSON response
func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, data, h.logger)
}

func (h *APIHandlers) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}

	response := APIResponse{Success: false, Code: string(errors.GetCode(err)), Error: err.Error()}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		response.Error = appErr.Message
		response.Message = appErr.Details
	}
	h.writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
