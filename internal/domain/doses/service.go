package doses

import (
	"context"
	"errors"
	"strings"
	"time"

	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/logger"
	"medication-dose-tracker/internal/platform/metrics"
	"medication-dose-tracker/internal/platform/table"
)

var ErrInvalidInput = errors.New("invalid input")

// Service maneja el ciclo de vida de las dosis: consulta de pendientes
// (enriquecida con el medicamento) y la transición UPCOMING→TAKEN.
type Service struct {
	repo Repository
	meds medications.Repository
	log  logger.Logger
	met  *metrics.Metrics
	now  func() time.Time
}

func NewService(repo Repository, meds medications.Repository, log logger.Logger, met *metrics.Metrics) *Service {
	return &Service{
		repo: repo,
		meds: meds,
		log:  log,
		met:  met,
		now:  time.Now,
	}
}

// GetUpcomingDoses devuelve las dosis UPCOMING futuras del care recipient,
// cada una con los datos de su medicamento. Una dosis cuyo medicamento no
// se puede resolver se omite (política definida: la respuesta es "todo lo
// resoluble", no un error por data inconsistente) — pero se cuenta y loguea.
func (s *Service) GetUpcomingDoses(ctx context.Context, careRecipientID string) ([]UpcomingDose, error) {
	careRecipientID = strings.TrimSpace(careRecipientID)
	if careRecipientID == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.repo.ListUpcoming(ctx, careRecipientID, s.now())
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []UpcomingDose{}, nil
	}

	// IDs únicos antes del lookup: un medicamento puede tener muchas dosis.
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, d := range items {
		if _, ok := seen[d.MedicationID]; ok {
			continue
		}
		seen[d.MedicationID] = struct{}{}
		ids = append(ids, d.MedicationID)
	}

	meds, err := s.meds.GetByIDs(ctx, careRecipientID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]medications.Medication, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}

	out := make([]UpcomingDose, 0, len(items))
	dropped := 0
	for _, d := range items {
		m, ok := byID[d.MedicationID]
		if !ok {
			dropped++
			continue
		}

		out = append(out, UpcomingDose{
			DoseID:          table.DoseSK(d.MedicationID, d.DueAt),
			MedicationID:    d.MedicationID,
			CareRecipientID: d.CareRecipientID,
			DueAt:           d.DueAt,
			Status:          d.Status,
			Medication: MedicationSummary{
				Name:       m.Name,
				Dosage:     m.Dosage,
				Recurrence: m.Recurrence,
				Notes:      m.Notes,
			},
		})
	}

	if dropped > 0 {
		s.met.UpcomingDosesDropped.Add(float64(dropped))
		s.log.Warn("upcoming doses dropped, medication not resolvable", map[string]any{
			"care_recipient_id": careRecipientID,
			"dropped":           dropped,
		})
	}

	return out, nil
}

// MarkAsTaken aplica la transición condicional sobre la tripleta exacta.
// Bajo N callers concurrentes con la misma tripleta exactamente uno recibe
// la dosis actualizada; el resto recibe ErrNotFound. La atomicidad viene
// del write condicional del storage; acá no hay locks.
func (s *Service) MarkAsTaken(ctx context.Context, careRecipientID, medicationID string, dueAt time.Time) (Dose, error) {
	careRecipientID = strings.TrimSpace(careRecipientID)
	medicationID = strings.TrimSpace(medicationID)
	if careRecipientID == "" || medicationID == "" || dueAt.IsZero() {
		return Dose{}, ErrInvalidInput
	}

	return s.repo.MarkTaken(ctx, careRecipientID, medicationID, dueAt, s.now())
}
