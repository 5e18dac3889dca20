package medications

import "time"

// Medication representa un medicamento recurrente de un care recipient.
// Invariante: exactamente uno de {TimesOfDay, DaysOfWeek} es no vacío,
// según Recurrence. Nunca se borra; solo se desactiva (Active=false).
type Medication struct {
	ID              string
	CareRecipientID string

	Name   string
	Dosage string
	Notes  string

	Recurrence Recurrence
	TimesOfDay []string // HH:MM, solo DAILY
	DaysOfWeek []int    // 0=domingo..6=sábado, solo WEEKLY

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenerationMessage es el payload que dispara la generación de dosis,
// tanto en el camino síncrono como por la cola (SQS). Los tags json
// definen el formato de wire del mensaje encolado.
type GenerationMessage struct {
	MedicationID    string     `json:"medication_id"`
	CareRecipientID string     `json:"care_recipient_id"`
	Recurrence      Recurrence `json:"recurrence"`
	TimesOfDay      []string   `json:"times_of_day,omitempty"`
	DaysOfWeek      []int      `json:"days_of_week,omitempty"`
	Active          bool       `json:"active"`
}

// NewGenerationMessage arma el mensaje a partir del medicamento persistido.
func NewGenerationMessage(m Medication) GenerationMessage {
	return GenerationMessage{
		MedicationID:    m.ID,
		CareRecipientID: m.CareRecipientID,
		Recurrence:      m.Recurrence,
		TimesOfDay:      m.TimesOfDay,
		DaysOfWeek:      m.DaysOfWeek,
		Active:          m.Active,
	}
}
