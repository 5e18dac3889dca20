package doses

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/care-recipients/{careRecipientID}/doses", func(dr chi.Router) {
		dr.Get("/upcoming", getUpcomingDosesHandler(svc))
		dr.Post("/mark-taken", markDoseAsTakenHandler(svc))
	})
}

type upcomingDoseResponse struct {
	DoseID          string                    `json:"dose_id"`
	MedicationID    string                    `json:"medication_id"`
	CareRecipientID string                    `json:"care_recipient_id"`
	DueAt           time.Time                 `json:"due_at"`
	Status          string                    `json:"status"`
	Medication      medicationSummaryResponse `json:"medication"`
}

type medicationSummaryResponse struct {
	Name       string `json:"name"`
	Dosage     string `json:"dosage"`
	Recurrence string `json:"recurrence"`
	Notes      string `json:"notes"`
}

type markDoseAsTakenRequest struct {
	MedicationID string `json:"medication_id"`
	DueAt        string `json:"due_at"` // RFC3339
}

type doseResponse struct {
	MedicationID    string     `json:"medication_id"`
	CareRecipientID string     `json:"care_recipient_id"`
	DueAt           time.Time  `json:"due_at"`
	TakenAt         *time.Time `json:"taken_at"`
	Status          string     `json:"status"`
}

type markDoseAsTakenResponse struct {
	Message string       `json:"message"`
	Dose    doseResponse `json:"dose"`
}

// getUpcomingDosesHandler godoc
// @Summary Listar dosis pendientes
// @Description Devuelve las dosis UPCOMING futuras del care recipient, enriquecidas con nombre, dosage, recurrence y notas del medicamento. Dosis con medicamento no resoluble se omiten.
// @Tags doses
// @Produce json
// @Param careRecipientID path string true "ID del care recipient"
// @Success 200 {array} upcomingDoseResponse
// @Failure 400 {string} string "careRecipientID inválido"
// @Router /care-recipients/{careRecipientID}/doses/upcoming [get]
func getUpcomingDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		careRecipientID := chi.URLParam(r, "careRecipientID")

		items, err := svc.GetUpcomingDoses(r.Context(), careRecipientID)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]upcomingDoseResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toUpcomingDoseResponse(d))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// markDoseAsTakenHandler godoc
// @Summary Marcar dosis como tomada
// @Description Transición condicional UPCOMING→TAKEN sobre la tripleta (careRecipientID, medication_id, due_at). Si la dosis no existe o ya fue tomada devuelve 404.
// @Tags doses
// @Accept json
// @Produce json
// @Param careRecipientID path string true "ID del care recipient"
// @Param payload body markDoseAsTakenRequest true "Identidad de la dosis; due_at en RFC3339"
// @Success 200 {object} markDoseAsTakenResponse
// @Failure 400 {string} string "invalid json / due_at inválido"
// @Failure 404 {string} string "dose not found or already taken"
// @Router /care-recipients/{careRecipientID}/doses/mark-taken [post]
func markDoseAsTakenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		careRecipientID := chi.URLParam(r, "careRecipientID")

		var req markDoseAsTakenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		dueAt, err := time.Parse(time.RFC3339, req.DueAt)
		if err != nil {
			http.Error(w, "due_at must be RFC3339", http.StatusBadRequest)
			return
		}

		d, err := svc.MarkAsTaken(r.Context(), careRecipientID, req.MedicationID, dueAt)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "dose not found or already taken", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, markDoseAsTakenResponse{
			Message: "Dose marked as taken",
			Dose: doseResponse{
				MedicationID:    d.MedicationID,
				CareRecipientID: d.CareRecipientID,
				DueAt:           d.DueAt,
				TakenAt:         d.TakenAt,
				Status:          string(d.Status),
			},
		})
	}
}

func toUpcomingDoseResponse(d UpcomingDose) upcomingDoseResponse {
	return upcomingDoseResponse{
		DoseID:          d.DoseID,
		MedicationID:    d.MedicationID,
		CareRecipientID: d.CareRecipientID,
		DueAt:           d.DueAt,
		Status:          string(d.Status),
		Medication: medicationSummaryResponse{
			Name:       d.Medication.Name,
			Dosage:     d.Medication.Dosage,
			Recurrence: string(d.Medication.Recurrence),
			Notes:      d.Medication.Notes,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
