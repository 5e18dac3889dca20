package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/table"
)

type medicationsRepo struct {
	mu    sync.RWMutex
	byKey map[string]medications.Medication // PK + "|" + SK
}

func NewMedicationsRepo() medications.Repository {
	return &medicationsRepo{
		byKey: make(map[string]medications.Medication),
	}
}

func medKey(careRecipientID, medicationID string) string {
	return table.CarePK(careRecipientID) + "|" + table.MedicationSK(medicationID)
}

func (r *medicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	if m.ID == "" || m.CareRecipientID == "" {
		return errors.New("medication id and care recipient id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// semántica put: sobreescribe, igual que el storage real
	r.byKey[medKey(m.CareRecipientID, m.ID)] = m
	return nil
}

func (r *medicationsRepo) GetByID(ctx context.Context, careRecipientID, medicationID string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byKey[medKey(careRecipientID, medicationID)]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *medicationsRepo) GetByIDs(ctx context.Context, careRecipientID string, medicationIDs []string) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0, len(medicationIDs))
	seen := make(map[string]struct{}, len(medicationIDs))

	for _, id := range medicationIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		// las keys ausentes se ignoran, no son error
		if m, ok := r.byKey[medKey(careRecipientID, id)]; ok {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *medicationsRepo) SetActive(ctx context.Context, careRecipientID, medicationID string, active bool, updatedAt time.Time) (medications.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := medKey(careRecipientID, medicationID)
	m, ok := r.byKey[key]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}

	m.Active = active
	m.UpdatedAt = updatedAt
	r.byKey[key] = m
	return m, nil
}
