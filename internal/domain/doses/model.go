package doses

import (
	"time"

	"medication-dose-tracker/internal/domain/medications"
)

// Dose es una ocurrencia concreta de un medicamento por tomar.
// Su identidad es la tripleta (CareRecipientID, MedicationID, DueAt).
// Invariante: TakenAt != nil ⟺ Status == TAKEN.
type Dose struct {
	CareRecipientID string
	MedicationID    string
	DueAt           time.Time

	Status  Status
	TakenAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MedicationSummary son los campos del medicamento que enriquecen
// una dosis pendiente.
type MedicationSummary struct {
	Name       string
	Dosage     string
	Recurrence medications.Recurrence
	Notes      string
}

// UpcomingDose es una dosis pendiente con su medicamento resuelto.
type UpcomingDose struct {
	DoseID          string // sort key compuesta, sirve como identificador opaco
	MedicationID    string
	CareRecipientID string
	DueAt           time.Time
	Status          Status
	Medication      MedicationSummary
}
