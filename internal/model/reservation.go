package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation is the booking and billing record tying client, post,
// game, time window and price together, stored in the `reservations`
// table.  Its status mirrors the paired session's status and its
// price is recomputed whenever the duration changes (extension).
//
// Fields:
//  ID              – primary key identifier.
//  ClientID        – client the booking belongs to.
//  PostID          – post booked for play.
//  GameID          – game booked for play.
//  PromotionID     – reservation-kind promotion applied at booking
//                    time, if any.  Validity is judged against
//                    ReservationDate, so a later deactivation does
//                    not silently alter the stored price.
//  OperatorID      – account that created the booking.
//  ReservationDate – booking date; fixed at creation.
//  Duration        – total booked play time (at least 15 minutes).
//  TicketNumber    – unique ticket printed on the receipt.
//  TotalPrice      – total price charged so far (>= 0).
//  Status          – mirrored from the session.
//  ReferralCode    – sponsor code handed in by the client (nullable).
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Reservation struct {
	ID              uint64          // reservations.id
	ClientID        uint64          // reservations.client_id
	PostID          uint64          // reservations.post_id
	GameID          uint64          // reservations.game_id
	PromotionID     *uint64         // reservations.promotion_id (nullable)
	OperatorID      uint64          // reservations.operator_id
	ReservationDate time.Time       // reservations.reservation_date
	Duration        time.Duration   // reservations.duration_minutes
	TicketNumber    string          // reservations.ticket_number
	TotalPrice      decimal.Decimal // reservations.total_price
	Status          string          // reservations.status
	ReferralCode    *string         // reservations.referral_code (nullable)
	CreatedAt       time.Time       // reservations.created_at
	UpdatedAt       time.Time       // reservations.updated_at
}
