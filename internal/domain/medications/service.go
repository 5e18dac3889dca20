package medications

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"medication-dose-tracker/internal/platform/logger"
	"medication-dose-tracker/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// HH:MM en 24h (igual que valida el frontend)
	timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// DoseGenerator es el camino síncrono de generación de dosis.
type DoseGenerator interface {
	GenerateDoses(ctx context.Context, msg GenerationMessage) (int, error)
}

// GenerationPublisher encola el mensaje de generación (fallback asíncrono).
// Entrega at-least-once, sin orden ni dedup.
type GenerationPublisher interface {
	PublishGeneration(ctx context.Context, msg GenerationMessage) error
}

type Service struct {
	repo      Repository
	generator DoseGenerator       // puede ser nil
	publisher GenerationPublisher // puede ser nil
	log       logger.Logger
	met       *metrics.Metrics
	now       func() time.Time

	// fallbacks en vuelo; Wait() permite drenarlos en shutdown y tests
	fallbacks       sync.WaitGroup
	fallbackTimeout time.Duration
	fallbackRetries int
}

func NewService(repo Repository, generator DoseGenerator, publisher GenerationPublisher, log logger.Logger, met *metrics.Metrics) *Service {
	return &Service{
		repo:            repo,
		generator:       generator,
		publisher:       publisher,
		log:             log,
		met:             met,
		now:             time.Now,
		fallbackTimeout: 10 * time.Second,
		fallbackRetries: 3,
	}
}

type CreateInput struct {
	CareRecipientID string
	Name            string
	Dosage          string
	Notes           string
	Recurrence      Recurrence
	TimesOfDay      []string
	DaysOfWeek      []int
	Active          *bool // nil = true
}

// Create valida, persiste y dispara la generación de dosis.
// La creación se considera exitosa una vez persistido el medicamento:
// un fallo de generación o de la cola nunca falla este request.
func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	if err := validateCreate(in); err != nil {
		return Medication{}, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := s.now()
	m := Medication{
		ID:              uuid.NewString(),
		CareRecipientID: strings.TrimSpace(in.CareRecipientID),
		Name:            strings.TrimSpace(in.Name),
		Dosage:          strings.TrimSpace(in.Dosage),
		Notes:           strings.TrimSpace(in.Notes),
		Recurrence:      in.Recurrence,
		TimesOfDay:      in.TimesOfDay,
		DaysOfWeek:      in.DaysOfWeek,
		Active:          active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}

	// Inactivo: no se generan dosis (precondición, no error).
	if !m.Active {
		return m, nil
	}

	msg := NewGenerationMessage(m)

	if s.generator != nil {
		count, err := s.generator.GenerateDoses(ctx, msg)
		if err == nil {
			s.log.Info("doses generated", map[string]any{
				"medication_id": m.ID,
				"count":         count,
			})
			return m, nil
		}
		s.log.Error("synchronous dose generation failed", map[string]any{
			"medication_id": m.ID,
			"error":         err.Error(),
		})
		s.publishFallback(msg)
		return m, nil
	}

	// Sin generador síncrono: directo a la cola.
	s.publishFallback(msg)
	return m, nil
}

// publishFallback encola en background con reintentos acotados.
// El resultado solo se loguea; nunca se propaga al caller.
func (s *Service) publishFallback(msg GenerationMessage) {
	if s.publisher == nil {
		s.log.Warn("no generation queue configured, doses not generated", map[string]any{
			"medication_id": msg.MedicationID,
		})
		return
	}

	s.met.GenerationFallbacks.Inc()

	s.fallbacks.Add(1)
	go func() {
		defer s.fallbacks.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.fallbackTimeout)
		defer cancel()

		var err error
		for attempt := 1; attempt <= s.fallbackRetries; attempt++ {
			if err = s.publisher.PublishGeneration(ctx, msg); err == nil {
				s.log.Info("generation message enqueued", map[string]any{
					"medication_id": msg.MedicationID,
					"attempt":       attempt,
				})
				return
			}

			select {
			case <-ctx.Done():
				err = ctx.Err()
				attempt = s.fallbackRetries // corta el loop
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		s.log.Error("failed to enqueue generation message", map[string]any{
			"medication_id": msg.MedicationID,
			"error":         err.Error(),
		})
	}()
}

// Wait drena los publishes de fallback en vuelo (shutdown ordenado).
func (s *Service) Wait() {
	s.fallbacks.Wait()
}

// Deactivate marca el medicamento como inactivo. No cancela dosis
// UPCOMING ya generadas; solo frena generaciones futuras.
func (s *Service) Deactivate(ctx context.Context, careRecipientID, medicationID string) (Medication, error) {
	careRecipientID = strings.TrimSpace(careRecipientID)
	medicationID = strings.TrimSpace(medicationID)
	if careRecipientID == "" || medicationID == "" {
		return Medication{}, ErrInvalidInput
	}

	return s.repo.SetActive(ctx, careRecipientID, medicationID, false, s.now())
}

func (s *Service) GetByID(ctx context.Context, careRecipientID, medicationID string) (Medication, error) {
	careRecipientID = strings.TrimSpace(careRecipientID)
	medicationID = strings.TrimSpace(medicationID)
	if careRecipientID == "" || medicationID == "" {
		return Medication{}, ErrInvalidInput
	}

	return s.repo.GetByID(ctx, careRecipientID, medicationID)
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.CareRecipientID) == "" {
		return fmt.Errorf("%w: care_recipient_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Dosage) == "" {
		return fmt.Errorf("%w: dosage is required", ErrInvalidInput)
	}

	switch in.Recurrence {
	case RecurrenceDaily:
		if len(in.TimesOfDay) == 0 {
			return fmt.Errorf("%w: times_of_day is required when recurrence is DAILY", ErrInvalidInput)
		}
		for _, t := range in.TimesOfDay {
			if !timeOfDayRe.MatchString(t) {
				return fmt.Errorf("%w: invalid time format %q, expected HH:MM", ErrInvalidInput, t)
			}
		}
		if len(in.DaysOfWeek) != 0 {
			return fmt.Errorf("%w: days_of_week must be empty when recurrence is DAILY", ErrInvalidInput)
		}
	case RecurrenceWeekly:
		if len(in.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: days_of_week is required when recurrence is WEEKLY", ErrInvalidInput)
		}
		for _, d := range in.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: invalid day of week %d, must be 0-6 (Sunday-Saturday)", ErrInvalidInput, d)
			}
		}
		if len(in.TimesOfDay) != 0 {
			return fmt.Errorf("%w: times_of_day must be empty when recurrence is WEEKLY", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: recurrence must be DAILY or WEEKLY", ErrInvalidInput)
	}

	return nil
}
