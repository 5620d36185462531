package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money taken for a reservation or an extension,
// stored in the `payments` table.  Every payment is attributed to the
// operator who took it.
//
// Fields:
//  ID           – primary key identifier.
//  TicketNumber – ticket of the reservation being paid.
//  Amount       – amount charged.
//  Mode         – payment mode as entered by the operator
//                 (e.g. "CASH", "CARD", "MOBILE").
//  OperatorID   – account that took the payment.
//  PaidAt       – when the payment was taken.
type Payment struct {
	ID           uint64          // payments.id
	TicketNumber string          // payments.ticket_number
	Amount       decimal.Decimal // payments.amount
	Mode         string          // payments.mode
	OperatorID   uint64          // payments.operator_id
	PaidAt       time.Time       // payments.paid_at
}
