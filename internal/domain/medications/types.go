package medications

// Recurrence define los tipos de recurrencia soportados.
// @Enum DAILY, WEEKLY
type Recurrence string

const (
	RecurrenceDaily  Recurrence = "DAILY"
	RecurrenceWeekly Recurrence = "WEEKLY"
)
