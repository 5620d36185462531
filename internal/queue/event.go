// Package queue defines message payloads exchanged over the message broker.
package queue

// ReceiptRequestedEvent is published whenever a payment is taken, both
// for the initial booking and for each extension. It carries enough
// information for downstream consumers to render a receipt without
// querying the primary database.
type ReceiptRequestedEvent struct {
	TicketNumber string `json:"ticket_number"`
	Kind         string `json:"kind"` // BOOKING | EXTENSION
	ClientID     uint64 `json:"client_id"`
	PostID       uint64 `json:"post_id"`
	Minutes      int    `json:"minutes"`
	Amount       string `json:"amount"` // decimal string, e.g. "770.00"
	PaymentMode  string `json:"payment_mode"`
	OperatorID   uint64 `json:"operator_id"`
	IssuedAt     string `json:"issued_at"` // RFC3339, UTC
}
