package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// ReservationRepo provides access to the reservations table.  Booked
// time is stored as whole minutes and prices as DECIMAL(10,2); both
// survive the round trip through shopspring decimal without loss.
type ReservationRepo struct {
	ex executor
}

// NewReservationRepo returns a ReservationRepo bound to the database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{ex: db} }

const reservationColumns = `id, client_id, post_id, game_id, promotion_id, operator_id,
	reservation_date, duration_minutes, ticket_number, total_price, status, referral_code,
	created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res     model.Reservation
		promoID sql.NullInt64
		minutes int64
		refCode sql.NullString
	)
	err := row.Scan(
		&res.ID, &res.ClientID, &res.PostID, &res.GameID, &promoID, &res.OperatorID,
		&res.ReservationDate, &minutes, &res.TicketNumber, &res.TotalPrice, &res.Status,
		&refCode, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if promoID.Valid {
		id := uint64(promoID.Int64)
		res.PromotionID = &id
	}
	if refCode.Valid {
		c := refCode.String
		res.ReferralCode = &c
	}
	res.Duration = time.Duration(minutes) * time.Minute
	return &res, nil
}

// ReservationByID loads one reservation.
func (r *ReservationRepo) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.ex.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrReservationNotFound
	}
	return res, err
}

// CreateReservation inserts a reservation and populates the generated
// ID.  A duplicate ticket number surfaces as ErrConflict.
func (r *ReservationRepo) CreateReservation(ctx context.Context, res *model.Reservation) error {
	var promoID any
	if res.PromotionID != nil {
		promoID = *res.PromotionID
	}
	var refCode any
	if res.ReferralCode != nil {
		refCode = *res.ReferralCode
	}
	result, err := r.ex.ExecContext(ctx,
		`INSERT INTO reservations
		 (client_id, post_id, game_id, promotion_id, operator_id, reservation_date,
		  duration_minutes, ticket_number, total_price, status, referral_code)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ClientID, res.PostID, res.GameID, promoID, res.OperatorID,
		res.ReservationDate.UTC(), int64(res.Duration/time.Minute), res.TicketNumber,
		res.TotalPrice, res.Status, refCode)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// SaveReservation persists every mutable reservation field, including
// the mirrored status.
func (r *ReservationRepo) SaveReservation(ctx context.Context, res *model.Reservation) error {
	_, err := r.ex.ExecContext(ctx,
		`UPDATE reservations SET post_id = ?, game_id = ?, duration_minutes = ?,
		 total_price = ?, status = ? WHERE id = ?`,
		res.PostID, res.GameID, int64(res.Duration/time.Minute), res.TotalPrice,
		res.Status, res.ID)
	return err
}
