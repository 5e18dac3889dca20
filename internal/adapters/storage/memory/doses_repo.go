package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/platform/table"
)

type dosesRepo struct {
	mu sync.Mutex
	// PK → SK → dosis; el SK compuesto mantiene el orden cronológico
	// por medicamento vía orden lexicográfico.
	byPartition map[string]map[string]doses.Dose
}

func NewDosesRepo() doses.Repository {
	return &dosesRepo{
		byPartition: make(map[string]map[string]doses.Dose),
	}
}

func (r *dosesRepo) BatchCreate(ctx context.Context, items []doses.Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range items {
		pk := table.CarePK(d.CareRecipientID)
		sk := table.DoseSK(d.MedicationID, d.DueAt)

		partition, ok := r.byPartition[pk]
		if !ok {
			partition = make(map[string]doses.Dose)
			r.byPartition[pk] = partition
		}
		// semántica put: re-generar sobreescribe el mismo SK
		partition[sk] = d
	}

	return nil
}

func (r *dosesRepo) ListUpcoming(ctx context.Context, careRecipientID string, from time.Time) ([]doses.Dose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	partition := r.byPartition[table.CarePK(careRecipientID)]
	if len(partition) == 0 {
		return nil, nil
	}

	sks := make([]string, 0, len(partition))
	for sk, d := range partition {
		if d.Status != doses.StatusUpcoming {
			continue
		}
		if d.DueAt.Before(from) {
			continue
		}
		sks = append(sks, sk)
	}

	// orden natural del storage = SK lexicográfico
	sort.Strings(sks)

	out := make([]doses.Dose, 0, len(sks))
	for _, sk := range sks {
		out = append(out, partition[sk])
	}
	return out, nil
}

func (r *dosesRepo) MarkTaken(ctx context.Context, careRecipientID, medicationID string, dueAt, takenAt time.Time) (doses.Dose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pk := table.CarePK(careRecipientID)
	sk := table.DoseSK(medicationID, dueAt)

	d, ok := r.byPartition[pk][sk]
	if !ok || d.Status != doses.StatusUpcoming {
		// ausente o ya tomada: mismo resultado para el caller
		return doses.Dose{}, doses.ErrNotFound
	}

	taken := takenAt
	d.Status = doses.StatusTaken
	d.TakenAt = &taken
	d.UpdatedAt = takenAt
	r.byPartition[pk][sk] = d

	return d, nil
}
