package model

import "time"

// Session statuses.  A session is created already running (ACTIVE),
// may alternate between ACTIVE and PAUSED, and ends in COMPLETED.
// COMPLETED is the only terminal state; failed operations reject
// without changing state.  PENDING exists for reservations whose play
// has not yet started.
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusPaused    = "PAUSED"
	StatusCompleted = "COMPLETED"
)

// Session is the live record of a client occupying a post and
// consuming paid time, stored in the `sessions` table.  Sessions are
// never deleted, only completed.  The paired reservation mirrors the
// session status at all times; the two are always persisted together.
//
// Fields:
//  ID              – primary key identifier.
//  ClientID        – client playing the session.
//  PostID          – post hosting the session.  Retained for the
//                    record even while paused; occupancy is decided
//                    purely by ACTIVE status, so a paused session
//                    holds no claim on the post.
//  GameID          – game being played.
//  ReservationID   – originating reservation.
//  PaidDuration    – total paid play time (non-negative).
//  StartTime       – when the running clock last started.
//  EndTime         – projected or actual end of play (null until the
//                    session has run or completed at least once).
//  Status          – PENDING, ACTIVE, PAUSED or COMPLETED.
//  PausedRemaining – remaining paid time snapshotted at pause time
//                    (null unless PAUSED).
//  PointsAccrued   – loyalty points already granted for this session
//                    by extensions, so completion can top up to the
//                    full amount without double-granting.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Session struct {
	ID              uint64         // sessions.id
	ClientID        uint64         // sessions.client_id
	PostID          uint64         // sessions.post_id
	GameID          uint64         // sessions.game_id
	ReservationID   uint64         // sessions.reservation_id
	PaidDuration    time.Duration  // sessions.paid_minutes
	StartTime       time.Time      // sessions.start_time
	EndTime         *time.Time     // sessions.end_time (nullable)
	Status          string         // sessions.status
	PausedRemaining *time.Duration // sessions.paused_remaining_secs (nullable)
	PointsAccrued   uint32         // sessions.points_accrued
	CreatedAt       time.Time      // sessions.created_at
	UpdatedAt       time.Time      // sessions.updated_at
}
