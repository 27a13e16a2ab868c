package mealplans

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dog-meal-planner/internal/domain/nutrition"
	"dog-meal-planner/internal/ports/energy"

	"github.com/go-chi/chi/v5"
)

// Límites de body. El batch lleva hasta MaxBatchSize recetas con nutrientes.
const (
	maxBodyBytes      = 1 << 20
	maxBatchBodyBytes = 4 << 20
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/plans", func(pr chi.Router) {
		pr.Post("/", createPlanHandler(svc))
		pr.Get("/{planID}", getPlanHandler(svc))
		pr.Get("/{planID}/prompt", getPromptHandler(svc))

		// Auditoría de recetas candidatas
		pr.Post("/{planID}/validations", validateRecipeHandler(svc))
		pr.Get("/{planID}/validations", listReportsHandler(svc))
		pr.Post("/{planID}/validations/batch", validateBatchHandler(svc))
	})
}

type createPlanRequest struct {
	Profile nutrition.DogProfile     `json:"profile"`
	Energy  *nutrition.EnergyContext `json:"energy,omitempty"` // opcional si hay calculadora configurada
}

type planResponse struct {
	ID            string                      `json:"id"`
	Profile       nutrition.DogProfile        `json:"profile"`
	Energy        nutrition.EnergyContext     `json:"energy"`
	Constraints   nutrition.RecipeConstraints `json:"constraints"`
	TablesVersion string                      `json:"tables_version"`
	Precedence    string                      `json:"override_precedence"`
	CreatedAt     time.Time                   `json:"created_at"`
}

type validateBatchRequest struct {
	Recipes []nutrition.CandidateRecipe `json:"recipes"`
}

type reportResponse struct {
	ID           string                       `json:"id"`
	PlanID       string                       `json:"plan_id"`
	RecipeName   string                       `json:"recipe_name"`
	Accepted     bool                         `json:"accepted"`
	Completeness string                       `json:"completeness"`
	Gaps         []string                     `json:"gaps"`
	Results      []nutrition.ValidationResult `json:"results"`
	CreatedAt    time.Time                    `json:"created_at"`
}

// createPlanHandler godoc
// @Summary Crear plan de comidas
// @Description Valida el perfil del perro, resuelve la energía (del request o de la calculadora externa) y devuelve el contrato de nutrientes resuelto.
// @Tags plans
// @Accept json
// @Produce json
// @Param payload body createPlanRequest true "Perfil del perro y contexto energético opcional"
// @Success 201 {object} planResponse
// @Failure 400 {string} string "invalid json / perfil inválido"
// @Failure 413 {string} string "request body too large"
// @Failure 502 {string} string "energy calculator unavailable"
// @Failure 503 {string} string "energy calculator temporarily unavailable"
// @Router /plans [post]
func createPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPlanRequest
		if !decodeJSON(w, r, maxBodyBytes, &req) {
			return
		}

		p, err := svc.CreatePlan(r.Context(), CreatePlanInput{
			Profile: req.Profile,
			Energy:  req.Energy,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPlanResponse(p))
	}
}

// getPlanHandler godoc
// @Summary Obtener plan
// @Tags plans
// @Produce json
// @Param planID path string true "ID del plan"
// @Success 200 {object} planResponse
// @Failure 404 {string} string "plan not found"
// @Router /plans/{planID} [get]
func getPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPlan(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(p))
	}
}

// getPromptHandler godoc
// @Summary Bloque de constraints para el generador
// @Description Devuelve las constraints del plan serializadas como instrucciones para el LLM generador de recetas.
// @Tags plans
// @Produce plain
// @Param planID path string true "ID del plan"
// @Success 200 {string} string
// @Failure 404 {string} string "plan not found"
// @Router /plans/{planID}/prompt [get]
func getPromptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Prompt(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out))
	}
}

// validateRecipeHandler godoc
// @Summary Validar receta candidata
// @Description Re-deriva densidades por 1000 kcal y audita la receta contra el plan. accepted=false si hay algún BLOCK.
// @Tags validations
// @Accept json
// @Produce json
// @Param planID path string true "ID del plan"
// @Param payload body nutrition.CandidateRecipe true "Receta con nutrientes ya resueltos por ingrediente"
// @Success 201 {object} reportResponse
// @Failure 400 {string} string "invalid json / receta malformada"
// @Failure 413 {string} string "request body too large"
// @Failure 404 {string} string "plan not found"
// @Router /plans/{planID}/validations [post]
func validateRecipeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nutrition.CandidateRecipe
		if !decodeJSON(w, r, maxBodyBytes, &req) {
			return
		}

		rep, err := svc.ValidateRecipe(r.Context(), chi.URLParam(r, "planID"), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toReportResponse(rep))
	}
}

// validateBatchHandler godoc
// @Summary Validar varias recetas
// @Tags validations
// @Accept json
// @Produce json
// @Param planID path string true "ID del plan"
// @Param payload body validateBatchRequest true "Recetas candidatas (máx. 50)"
// @Success 201 {array} reportResponse
// @Failure 400 {string} string "invalid json / batch inválido"
// @Failure 413 {string} string "request body too large"
// @Failure 404 {string} string "plan not found"
// @Router /plans/{planID}/validations/batch [post]
func validateBatchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateBatchRequest
		if !decodeJSON(w, r, maxBatchBodyBytes, &req) {
			return
		}

		reps, err := svc.ValidateBatch(r.Context(), chi.URLParam(r, "planID"), req.Recipes)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]reportResponse, 0, len(reps))
		for _, rep := range reps {
			out = append(out, toReportResponse(rep))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// listReportsHandler godoc
// @Summary Listar validaciones de un plan
// @Tags validations
// @Produce json
// @Param planID path string true "ID del plan"
// @Success 200 {array} reportResponse
// @Failure 404 {string} string "plan not found"
// @Router /plans/{planID}/validations [get]
func listReportsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reps, err := svc.ListReports(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]reportResponse, 0, len(reps))
		for _, rep := range reps {
			out = append(out, toReportResponse(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toPlanResponse(p Plan) planResponse {
	return planResponse{
		ID:            p.ID,
		Profile:       p.Profile,
		Energy:        p.Energy,
		Constraints:   p.Constraints,
		TablesVersion: p.TablesVersion,
		Precedence:    string(p.Precedence),
		CreatedAt:     p.CreatedAt,
	}
}

func toReportResponse(r Report) reportResponse {
	gaps := r.Gaps
	if gaps == nil {
		gaps = []string{}
	}
	return reportResponse{
		ID:           r.ID,
		PlanID:       r.PlanID,
		RecipeName:   r.RecipeName,
		Accepted:     r.Accepted,
		Completeness: r.Completeness(),
		Gaps:         gaps,
		Results:      r.Results,
		CreatedAt:    r.CreatedAt,
	}
}

// decodeJSON lee el body con tope de tamaño. false => ya respondió 400/413.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError traduce errores del servicio a status HTTP.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "plan not found", http.StatusNotFound)
	case errors.Is(err, energy.ErrTemporarilyUnavailable):
		w.Header().Set("Retry-After", "5")
		http.Error(w, "energy calculator temporarily unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, ErrEnergyUnavailable):
		http.Error(w, "energy calculator unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
