package dynamo

import (
	"fmt"
	"time"

	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/table"
)

// Representación de wire de la single-table. Los timestamps van como
// strings en table.TimestampLayout: dueAt forma parte del SK y el orden
// lexicográfico tiene que coincidir con el cronológico.

type medicationItem struct {
	PK              string   `dynamodbav:"PK"`
	SK              string   `dynamodbav:"SK"`
	MedicationID    string   `dynamodbav:"medicationId"`
	CareRecipientID string   `dynamodbav:"careRecipientId"`
	Name            string   `dynamodbav:"name"`
	Dosage          string   `dynamodbav:"dosage"`
	Notes           string   `dynamodbav:"notes"`
	Recurrence      string   `dynamodbav:"recurrence"`
	TimesOfDay      []string `dynamodbav:"timesOfDay,omitempty"`
	DaysOfWeek      []int    `dynamodbav:"daysOfWeek,omitempty"`
	Active          bool     `dynamodbav:"active"`
	CreatedAt       string   `dynamodbav:"createdAt"`
	UpdatedAt       string   `dynamodbav:"updatedAt"`
}

type doseItem struct {
	PK              string  `dynamodbav:"PK"`
	SK              string  `dynamodbav:"SK"`
	MedicationID    string  `dynamodbav:"medicationId"`
	CareRecipientID string  `dynamodbav:"careRecipientId"`
	DueAt           string  `dynamodbav:"dueAt"`
	TakenAt         *string `dynamodbav:"takenAt"`
	Status          string  `dynamodbav:"status"`
	CreatedAt       string  `dynamodbav:"createdAt"`
	UpdatedAt       string  `dynamodbav:"updatedAt"`
}

func toMedicationItem(m medications.Medication) medicationItem {
	return medicationItem{
		PK:              table.CarePK(m.CareRecipientID),
		SK:              table.MedicationSK(m.ID),
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

func fromMedicationItem(it medicationItem) (medications.Medication, error) {
	createdAt, err := table.ParseTimestamp(it.CreatedAt)
	if err != nil {
		return medications.Medication{}, fmt.Errorf("medication %s: bad createdAt: %w", it.SK, err)
	}
	updatedAt, err := table.ParseTimestamp(it.UpdatedAt)
	if err != nil {
		return medications.Medication{}, fmt.Errorf("medication %s: bad updatedAt: %w", it.SK, err)
	}

	return medications.Medication{
		ID:              it.MedicationID,
		CareRecipientID: it.CareRecipientID,
		Name:            it.Name,
		Dosage:          it.Dosage,
		Notes:           it.Notes,
		Recurrence:      medications.Recurrence(it.Recurrence),
		TimesOfDay:      it.TimesOfDay,
		DaysOfWeek:      it.DaysOfWeek,
		Active:          it.Active,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

func toDoseItem(d doses.Dose) doseItem {
	it := doseItem{
		PK:              table.CarePK(d.CareRecipientID),
		SK:              table.DoseSK(d.MedicationID, d.DueAt),
		MedicationID:    d.MedicationID,
		CareRecipientID: d.CareRecipientID,
		DueAt:           table.FormatTimestamp(d.DueAt),
		Status:          string(d.Status),
		CreatedAt:       table.FormatTimestamp(d.CreatedAt),
		UpdatedAt:       table.FormatTimestamp(d.UpdatedAt),
	}
	if d.TakenAt != nil {
		taken := table.FormatTimestamp(*d.TakenAt)
		it.TakenAt = &taken
	}
	return it
}

func fromDoseItem(it doseItem) (doses.Dose, error) {
	dueAt, err := table.ParseTimestamp(it.DueAt)
	if err != nil {
		return doses.Dose{}, fmt.Errorf("dose %s: bad dueAt: %w", it.SK, err)
	}
	createdAt, err := table.ParseTimestamp(it.CreatedAt)
	if err != nil {
		return doses.Dose{}, fmt.Errorf("dose %s: bad createdAt: %w", it.SK, err)
	}
	updatedAt, err := table.ParseTimestamp(it.UpdatedAt)
	if err != nil {
		return doses.Dose{}, fmt.Errorf("dose %s: bad updatedAt: %w", it.SK, err)
	}

	var takenAt *time.Time
	if it.TakenAt != nil {
		t, err := table.ParseTimestamp(*it.TakenAt)
		if err != nil {
			return doses.Dose{}, fmt.Errorf("dose %s: bad takenAt: %w", it.SK, err)
		}
		takenAt = &t
	}

	return doses.Dose{
		CareRecipientID: it.CareRecipientID,
		MedicationID:    it.MedicationID,
		DueAt:           dueAt,
		Status:          doses.Status(it.Status),
		TakenAt:         takenAt,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}
