package medications

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("medication not found")

type Repository interface {
	Create(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, careRecipientID, medicationID string) (Medication, error)

	// GetByIDs resuelve en batch; ignora IDs inexistentes (no es error).
	GetByIDs(ctx context.Context, careRecipientID string, medicationIDs []string) ([]Medication, error)

	// SetActive devuelve el medicamento actualizado o ErrNotFound.
	SetActive(ctx context.Context, careRecipientID, medicationID string, active bool, updatedAt time.Time) (Medication, error)
}
