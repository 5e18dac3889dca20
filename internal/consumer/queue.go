package consumer

import "context"

// Message es lo mínimo que el consumer necesita de un mensaje de cola.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Queue es la capability de recepción: long-poll + ack explícito.
// Entrega at-least-once, sin orden; un mensaje no borrado se reentrega.
type Queue interface {
	Receive(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}
