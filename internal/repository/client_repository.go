package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// ClientRepo provides access to the clients table and the loyalty
// point balance.
type ClientRepo struct {
	ex executor
}

// NewClientRepo returns a ClientRepo bound to the database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{ex: db} }

// ClientByID loads one client.
func (r *ClientRepo) ClientByID(ctx context.Context, id uint64) (*model.Client, error) {
	var c model.Client
	err := r.ex.QueryRowContext(ctx,
		`SELECT id, full_name, phone, email, loyalty_points, created_at, updated_at
		 FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.FullName, &c.Phone, &c.Email, &c.LoyaltyPoints, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddLoyaltyPoints credits points atomically in the database, so two
// concurrent accruals never lose an update.
func (r *ClientRepo) AddLoyaltyPoints(ctx context.Context, clientID uint64, points uint32) error {
	res, err := r.ex.ExecContext(ctx,
		`UPDATE clients SET loyalty_points = loyalty_points + ? WHERE id = ?`,
		points, clientID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrClientNotFound
	}
	return nil
}
