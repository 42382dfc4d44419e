package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

const maxRequestBytes = 16 << 10

// Recommender produces a recommendation for a symptom selection
type Recommender interface {
	Recommend(ctx context.Context, sel entities.SymptomSelection) (*entities.Recommendation, error)
}

// RecommendationHandler handles symptom and recommendation HTTP requests
type RecommendationHandler struct {
	recommender Recommender
	departments []entities.Department
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommender Recommender, departments []entities.Department) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		departments: departments,
	}
}

// RecommendationResponse is the body of POST /api/recommendations
type RecommendationResponse struct {
	Outcome    entities.RecommendationOutcome `json:"outcome"`
	Department *entities.Department           `json:"department"`
	Doctor     *entities.Doctor               `json:"doctor"`
}

// ValidationResponse is the body of POST /api/symptoms/validate
type ValidationResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Recommend handles POST /api/recommendations
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	sel, ok := decodeSelection(w, r)
	if !ok {
		return
	}

	rec, err := h.recommender.Recommend(r.Context(), sel)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, RecommendationResponse{
		Outcome:    rec.Outcome,
		Department: rec.Department,
		Doctor:     rec.Doctor,
	})
}

// ValidateSymptoms handles POST /api/symptoms/validate
func (h *RecommendationHandler) ValidateSymptoms(w http.ResponseWriter, r *http.Request) {
	sel, ok := decodeSelection(w, r)
	if !ok {
		return
	}

	resp := ValidationResponse{Valid: entities.ValidateSymptomSelection(sel)}
	if err := sel.Validate(); err != nil {
		resp.Error = err.Error()
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// ListDepartments handles GET /api/departments
func (h *RecommendationHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"departments": h.departments,
		"count":       len(h.departments),
	})
}

func decodeSelection(w http.ResponseWriter, r *http.Request) (entities.SymptomSelection, bool) {
	var sel entities.SymptomSelection

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sel); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			respondWithError(w, http.StatusBadRequest, "request body is required")
		default:
			respondWithError(w, http.StatusBadRequest, "invalid request payload")
		}
		return sel, false
	}
	return sel, true
}
