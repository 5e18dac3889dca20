package consumer

import (
	"context"
	"encoding/json"
	"time"

	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/logger"
)

// DoseGenerator es el motor de expansión (camino asíncrono de fallback).
type DoseGenerator interface {
	GenerateDoses(ctx context.Context, msg medications.GenerationMessage) (int, error)
}

// GenerationConsumer drena la cola de mensajes de generación y los pasa
// al motor. Un mensaje que falla no se borra: la cola lo reentrega
// (at-least-once; la redelivery tras un éxito parcial puede duplicar
// dosis — riesgo asumido, ver DESIGN.md).
type GenerationConsumer struct {
	queue     Queue
	generator DoseGenerator
	log       logger.Logger
}

func NewGenerationConsumer(queue Queue, generator DoseGenerator, log logger.Logger) *GenerationConsumer {
	return &GenerationConsumer{
		queue:     queue,
		generator: generator,
		log:       log,
	}
}

// Start consume en loop hasta que el contexto se cancele.
// Errores de recepción aplican backoff exponencial (1s..30s).
func (c *GenerationConsumer) Start(ctx context.Context) error {
	c.log.Info("generation consumer started", nil)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			c.log.Info("generation consumer stopped", nil)
			return nil
		default:
		}

		msgs, err := c.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			c.log.Error("failed to receive generation messages", map[string]any{
				"error":   err.Error(),
				"backoff": backoff.String(),
			})

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		for _, m := range msgs {
			c.handle(ctx, m)
		}
	}
}

func (c *GenerationConsumer) handle(ctx context.Context, m Message) {
	var msg medications.GenerationMessage
	if err := json.Unmarshal([]byte(m.Body), &msg); err != nil {
		// un body malformado nunca va a parsear: se borra para no ciclar
		c.log.Error("dropping malformed generation message", map[string]any{
			"error": err.Error(),
		})
		_ = c.queue.Delete(ctx, m.ReceiptHandle)
		return
	}

	count, err := c.generator.GenerateDoses(ctx, msg)
	if err != nil {
		// sin delete: la cola reentrega
		c.log.Error("dose generation from queue failed", map[string]any{
			"medication_id": msg.MedicationID,
			"error":         err.Error(),
		})
		return
	}

	c.log.Info("doses generated from queue", map[string]any{
		"medication_id": msg.MedicationID,
		"count":         count,
	})

	if err := c.queue.Delete(ctx, m.ReceiptHandle); err != nil {
		c.log.Warn("failed to delete generation message", map[string]any{
			"medication_id": msg.MedicationID,
			"error":         err.Error(),
		})
	}
}
