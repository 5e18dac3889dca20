package doses

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound: la dosis no existe o ya no está UPCOMING. Para el caller
// es el mismo resultado ("no match"), no un error de infraestructura.
var ErrNotFound = errors.New("dose not found or already taken")

type Repository interface {
	// BatchCreate persiste en chunks del tamaño máximo del storage.
	// No es atómico entre chunks: un fallo intermedio deja escritura parcial.
	BatchCreate(ctx context.Context, items []Dose) error

	// ListUpcoming devuelve las dosis UPCOMING con dueAt >= from,
	// en el orden natural del storage (SK lexicográfico).
	ListUpcoming(ctx context.Context, careRecipientID string, from time.Time) ([]Dose, error)

	// MarkTaken aplica la transición condicional UPCOMING→TAKEN sobre la
	// tripleta exacta. Devuelve ErrNotFound si no hay match; es la única
	// disciplina de concurrencia del sistema (write condicional atómico).
	MarkTaken(ctx context.Context, careRecipientID, medicationID string, dueAt, takenAt time.Time) (Dose, error)
}
