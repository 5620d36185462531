// Package service bridges the session engine to external infrastructure.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/queue"
)

const receiptQueueName = "receipt.requested"

// ReceiptPublisher publishes receipt events to RabbitMQ. It dials per
// publish so a broker restart never leaves the handler holding a dead
// connection; receipts are rare enough that connection churn does not
// matter. Errors are logged and returned so callers can ignore them
// without interrupting the main request flow.
type ReceiptPublisher struct {
	URL string
}

// NewReceiptPublisher returns a publisher bound to the given AMQP URL.
func NewReceiptPublisher(url string) *ReceiptPublisher {
	return &ReceiptPublisher{URL: url}
}

// PublishReceipt delivers one receipt to the receipt.requested queue.
// Messages are marked persistent so they survive broker restarts.
func (p *ReceiptPublisher) PublishReceipt(ctx context.Context, r engine.Receipt) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(receiptQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	ev := queue.ReceiptRequestedEvent{
		TicketNumber: r.TicketNumber,
		Kind:         r.Kind,
		ClientID:     r.ClientID,
		PostID:       r.PostID,
		Minutes:      r.Minutes,
		Amount:       r.Amount.StringFixed(2),
		PaymentMode:  r.PaymentMode,
		OperatorID:   r.OperatorID,
		IssuedAt:     r.IssuedAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		receiptQueueName, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
