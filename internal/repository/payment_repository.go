package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

// PaymentRepo records payments taken for tickets.  Payments are
// append-only: nothing in the system ever updates or deletes one.
type PaymentRepo struct {
	ex executor
}

// NewPaymentRepo returns a PaymentRepo bound to the database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{ex: db} }

// CreatePayment inserts a payment and populates the generated ID.
func (r *PaymentRepo) CreatePayment(ctx context.Context, p *model.Payment) error {
	res, err := r.ex.ExecContext(ctx,
		`INSERT INTO payments (ticket_number, amount, mode, operator_id, paid_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.TicketNumber, p.Amount, p.Mode, p.OperatorID, p.PaidAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListByTicket returns every payment taken for a ticket, oldest
// first.
func (r *PaymentRepo) ListByTicket(ctx context.Context, ticketNumber string) ([]model.Payment, error) {
	rows, err := r.ex.QueryContext(ctx,
		`SELECT id, ticket_number, amount, mode, operator_id, paid_at
		 FROM payments WHERE ticket_number = ? ORDER BY paid_at`, ticketNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.TicketNumber, &p.Amount, &p.Mode, &p.OperatorID, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
