package doses

import (
	"context"
	"time"

	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/logger"
	"medication-dose-tracker/internal/platform/metrics"
)

const (
	// horizonDays: ventana fija de generación (día 0 = hoy).
	horizonDays = 7

	// weeklyHour/weeklyMinute: hora default de las dosis WEEKLY (08:00).
	weeklyHour   = 8
	weeklyMinute = 0
)

// Generator expande un mensaje de recurrencia en dosis concretas dentro
// del horizonte y las persiste en batch.
//
// El reloj y la zona horaria van inyectados: para un `now` fijo la salida
// es exactamente reproducible. No hay dedup contra dosis ya generadas:
// el caller debe invocarlo como máximo una vez por creación de medicamento
// (la cola entrega at-least-once, riesgo asumido — ver DESIGN.md).
type Generator struct {
	repo Repository
	log  logger.Logger
	met  *metrics.Metrics
	now  func() time.Time
	loc  *time.Location
}

func NewGenerator(repo Repository, log logger.Logger, met *metrics.Metrics, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.Local
	}
	return &Generator{
		repo: repo,
		log:  log,
		met:  met,
		now:  time.Now,
		loc:  loc,
	}
}

// GenerateDoses devuelve la cantidad de dosis creadas.
// Medicamento inactivo ⇒ 0, sin tocar el storage.
func (g *Generator) GenerateDoses(ctx context.Context, msg medications.GenerationMessage) (int, error) {
	if !msg.Active {
		return 0, nil
	}

	now := g.now().In(g.loc)

	var items []Dose
	switch msg.Recurrence {
	case medications.RecurrenceDaily:
		items = g.expandDaily(msg, now)
	case medications.RecurrenceWeekly:
		items = g.expandWeekly(msg, now)
	}

	if len(items) == 0 {
		return 0, nil
	}

	if err := g.repo.BatchCreate(ctx, items); err != nil {
		return 0, err
	}

	g.met.DosesGenerated.Add(float64(len(items)))
	return len(items), nil
}

func (g *Generator) expandDaily(msg medications.GenerationMessage, now time.Time) []Dose {
	items := make([]Dose, 0, horizonDays*len(msg.TimesOfDay))

	for offset := 0; offset < horizonDays; offset++ {
		for _, tod := range msg.TimesOfDay {
			hh, mm, ok := parseTimeOfDay(tod)
			if !ok {
				// los mensajes de la cola no pasan por la validación del request
				g.log.Warn("skipping invalid time of day", map[string]any{
					"medication_id": msg.MedicationID,
					"time_of_day":   tod,
				})
				continue
			}

			due := atTime(now, offset, hh, mm, g.loc)

			// Día 0: las horas ya pasadas de hoy no se generan.
			if offset == 0 && due.Before(now) {
				continue
			}

			items = append(items, newDose(msg, due, now))
		}
	}

	return items
}

func (g *Generator) expandWeekly(msg medications.GenerationMessage, now time.Time) []Dose {
	items := make([]Dose, 0, len(msg.DaysOfWeek))

	for offset := 0; offset < horizonDays; offset++ {
		day := atTime(now, offset, 0, 0, g.loc)

		// time.Weekday ya usa 0=domingo..6=sábado
		if !containsDay(msg.DaysOfWeek, int(day.Weekday())) {
			continue
		}

		due := atTime(now, offset, weeklyHour, weeklyMinute, g.loc)
		if offset == 0 && due.Before(now) {
			continue
		}

		items = append(items, newDose(msg, due, now))
	}

	return items
}

func newDose(msg medications.GenerationMessage, due, now time.Time) Dose {
	return Dose{
		CareRecipientID: msg.CareRecipientID,
		MedicationID:    msg.MedicationID,
		DueAt:           due,
		Status:          StatusUpcoming,
		TakenAt:         nil,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// atTime arma el instante "día de hoy + offset días, a las hh:mm" en loc.
// time.Date normaliza el overflow de días (fin de mes, DST).
func atTime(now time.Time, dayOffset, hh, mm int, loc *time.Location) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+dayOffset, hh, mm, 0, 0, loc)
}

func parseTimeOfDay(s string) (hh, mm int, ok bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
