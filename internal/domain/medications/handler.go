package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/care-recipients/{careRecipientID}/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Post("/{medicationID}/deactivate", deactivateMedicationHandler(svc))
	})
}

type createMedicationRequest struct {
	Name       string   `json:"name"`
	Dosage     string   `json:"dosage"`
	Notes      string   `json:"notes"`
	Recurrence string   `json:"recurrence"` // DAILY | WEEKLY
	TimesOfDay []string `json:"times_of_day"`
	DaysOfWeek []int    `json:"days_of_week"`
	Active     *bool    `json:"active"` // default true
}

type medicationResponse struct {
	ID              string    `json:"id"`
	CareRecipientID string    `json:"care_recipient_id"`
	Name            string    `json:"name"`
	Dosage          string    `json:"dosage"`
	Notes           string    `json:"notes"`
	Recurrence      string    `json:"recurrence"`
	TimesOfDay      []string  `json:"times_of_day,omitempty"`
	DaysOfWeek      []int     `json:"days_of_week,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type deactivateMedicationResponse struct {
	Message    string             `json:"message"`
	Medication medicationResponse `json:"medication"`
}

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Description Crea un medicamento recurrente para el care recipient y genera sus dosis de los próximos 7 días (síncrono, con fallback a cola si falla). Recurrence DAILY exige times_of_day (HH:MM); WEEKLY exige days_of_week (0=domingo..6=sábado).
// @Tags medications
// @Accept json
// @Produce json
// @Param careRecipientID path string true "ID del care recipient"
// @Param payload body createMedicationRequest true "Datos del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / validación"
// @Router /care-recipients/{careRecipientID}/medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		careRecipientID := chi.URLParam(r, "careRecipientID")

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			CareRecipientID: careRecipientID,
			Name:            req.Name,
			Dosage:          req.Dosage,
			Notes:           req.Notes,
			Recurrence:      Recurrence(req.Recurrence),
			TimesOfDay:      req.TimesOfDay,
			DaysOfWeek:      req.DaysOfWeek,
			Active:          req.Active,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// deactivateMedicationHandler godoc
// @Summary Desactivar medicamento
// @Description Marca el medicamento como inactivo. Las dosis UPCOMING ya generadas no se cancelan; solo se frenan generaciones futuras.
// @Tags medications
// @Produce json
// @Param careRecipientID path string true "ID del care recipient"
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} deactivateMedicationResponse
// @Failure 404 {string} string "medication not found"
// @Router /care-recipients/{careRecipientID}/medications/{medicationID}/deactivate [post]
func deactivateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		careRecipientID := chi.URLParam(r, "careRecipientID")
		medicationID := chi.URLParam(r, "medicationID")

		m, err := svc.Deactivate(r.Context(), careRecipientID, medicationID)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "medication not found", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, deactivateMedicationResponse{
			Message:    "Medication marked as inactive",
			Medication: toMedicationResponse(m),
		})
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:              m.ID,
		CareRecipientID: m.CareRecipientID,
		Name:            m.Name,
		Dosage:          m.Dosage,
		Notes:           m.Notes,
		Recurrence:      string(m.Recurrence),
		TimesOfDay:      m.TimesOfDay,
		DaysOfWeek:      m.DaysOfWeek,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
