package postgres

import (
	"fmt"
	"time"

	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/table"
)

// Representación jsonb de la single-table. Mismos nombres de atributo y
// mismo formato de timestamp que el adapter dynamo: el invariante de
// orden del SK exige que todos los writers rendericen igual.

type medicationRecord struct {
	MedicationID    string   `json:"medicationId"`
	CareRecipientID string   `json:"careRecipientId"`
	Name            string   `json:"name"`
	Dosage          string   `json:"dosage"`
	Notes           string   `json:"notes"`
	Recurrence      string   `json:"recurrence"`
	TimesOfDay      []string `json:"timesOfDay,omitempty"`
	DaysOfWeek      []int    `json:"daysOfWeek,omitempty"`
	Active          bool     `json:"active"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

type doseRecord struct {
	MedicationID    string  `json:"medicationId"`
	CareRecipientID string  `json:"careRecipientId"`
	DueAt           string  `json:"dueAt"`
	TakenAt         *string `json:"takenAt"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toMedicationRecord(m medications.Medication) medicationRecord {
	return medicationRecord{
		MedicationID:    m.ID,
		CareRecipientID: m.CareRecipientID,
		Name:            m.Name,
		Dosage:          m.Dosage,
		Notes:           m.Notes,
		Recurrence:      string(m.Recurrence),
		TimesOfDay:      m.TimesOfDay,
		DaysOfWeek:      m.DaysOfWeek,
		Active:          m.Active,
		CreatedAt:       table.FormatTimestamp(m.CreatedAt),
		UpdatedAt:       table.FormatTimestamp(m.UpdatedAt),
	}
}

func fromMedicationRecord(rec medicationRecord) (medications.Medication, error) {
	createdAt, err := table.ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return medications.Medication{}, fmt.Errorf("medication %s: bad createdAt: %w", rec.MedicationID, err)
	}
	updatedAt, err := table.ParseTimestamp(rec.UpdatedAt)
	if err != nil {
		return medications.Medication{}, fmt.Errorf("medication %s: bad updatedAt: %w", rec.MedicationID, err)
	}

	return medications.Medication{
		ID:              rec.MedicationID,
		CareRecipientID: rec.CareRecipientID,
		Name:            rec.Name,
		Dosage:          rec.Dosage,
		Notes:           rec.Notes,
		Recurrence:      medications.Recurrence(rec.Recurrence),
		TimesOfDay:      rec.TimesOfDay,
		DaysOfWeek:      rec.DaysOfWeek,
		Active:          rec.Active,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

func toDoseRecord(d doses.Dose) doseRecord {
	rec := doseRecord{
		MedicationID:    d.MedicationID,
		CareRecipientID: d.CareRecipientID,
		DueAt:           table.FormatTimestamp(d.DueAt),
		Status:          string(d.Status),
		CreatedAt:       table.FormatTimestamp(d.CreatedAt),
		UpdatedAt:       table.FormatTimestamp(d.UpdatedAt),
	}
	if d.TakenAt != nil {
		taken := table.FormatTimestamp(*d.TakenAt)
		rec.TakenAt = &taken
	}
	return rec
}

func fromDoseRecord(rec doseRecord) (doses.Dose, error) {
	dueAt, err := table.ParseTimestamp(rec.DueAt)
	if err != nil {
		return doses.Dose{}, fmt.Errorf("dose %s/%s: bad dueAt: %w", rec.MedicationID, rec.DueAt, err)
	}
	createdAt, err := table.ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return doses.Dose{}, fmt.Errorf("dose %s/%s: bad createdAt: %w", rec.MedicationID, rec.DueAt, err)
	}
	updatedAt, err := table.ParseTimestamp(rec.UpdatedAt)
	if err != nil {
		return doses.Dose{}, fmt.Errorf("dose %s/%s: bad updatedAt: %w", rec.MedicationID, rec.DueAt, err)
	}

	var takenAt *time.Time
	if rec.TakenAt != nil {
		t, err := table.ParseTimestamp(*rec.TakenAt)
		if err != nil {
			return doses.Dose{}, fmt.Errorf("dose %s/%s: bad takenAt: %w", rec.MedicationID, rec.DueAt, err)
		}
		takenAt = &t
	}

	return doses.Dose{
		CareRecipientID: rec.CareRecipientID,
		MedicationID:    rec.MedicationID,
		DueAt:           dueAt,
		Status:          doses.Status(rec.Status),
		TakenAt:         takenAt,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}
