package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// SessionRepo provides access to the sessions table.  Paid time is
// stored as whole minutes and the paused remainder as seconds, since
// a pause can land anywhere between minute marks.  All timestamps are
// stored in UTC.
type SessionRepo struct {
	ex executor
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{ex: db} }

const sessionColumns = `id, client_id, post_id, game_id, reservation_id, paid_minutes,
	start_time, end_time, status, paused_remaining_secs, points_accrued, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	var (
		s          model.Session
		paidMin    int64
		endTime    sql.NullTime
		pausedSecs sql.NullInt64
	)
	err := row.Scan(
		&s.ID, &s.ClientID, &s.PostID, &s.GameID, &s.ReservationID, &paidMin,
		&s.StartTime, &endTime, &s.Status, &pausedSecs, &s.PointsAccrued,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.PaidDuration = time.Duration(paidMin) * time.Minute
	if endTime.Valid {
		t := endTime.Time
		s.EndTime = &t
	}
	if pausedSecs.Valid {
		d := time.Duration(pausedSecs.Int64) * time.Second
		s.PausedRemaining = &d
	}
	return &s, nil
}

// SessionByID loads one session.  A missing row is reported as the
// engine's typed not-found error.
func (r *SessionRepo) SessionByID(ctx context.Context, id uint64) (*model.Session, error) {
	row := r.ex.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrSessionNotFound
	}
	return s, err
}

// ActiveByPost returns the active session on the post, or nil when
// the post is free.
func (r *SessionRepo) ActiveByPost(ctx context.Context, postID uint64) (*model.Session, error) {
	row := r.ex.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE post_id = ? AND status = ? LIMIT 1`,
		postID, model.StatusActive)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// ActiveByClient returns the client's active session, or nil.
func (r *SessionRepo) ActiveByClient(ctx context.Context, clientID uint64) (*model.Session, error) {
	row := r.ex.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE client_id = ? AND status = ? LIMIT 1`,
		clientID, model.StatusActive)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// PausedByClient returns the client's most recently paused session,
// or nil.
func (r *SessionRepo) PausedByClient(ctx context.Context, clientID uint64) (*model.Session, error) {
	row := r.ex.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE client_id = ? AND status = ?
		 ORDER BY updated_at DESC LIMIT 1`,
		clientID, model.StatusPaused)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// PausedByPost returns the most recently paused session that still
// references the post, or nil.  Informational only: a paused session
// holds no claim on its former post.
func (r *SessionRepo) PausedByPost(ctx context.Context, postID uint64) (*model.Session, error) {
	row := r.ex.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE post_id = ? AND status = ?
		 ORDER BY updated_at DESC LIMIT 1`,
		postID, model.StatusPaused)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// CreateSession inserts a session and populates the generated ID.
func (r *SessionRepo) CreateSession(ctx context.Context, s *model.Session) error {
	res, err := r.ex.ExecContext(ctx,
		`INSERT INTO sessions
		 (client_id, post_id, game_id, reservation_id, paid_minutes, start_time, end_time, status, paused_remaining_secs, points_accrued)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ClientID, s.PostID, s.GameID, s.ReservationID,
		int64(s.PaidDuration/time.Minute), s.StartTime.UTC(), nullableTime(s.EndTime),
		s.Status, nullableSecs(s.PausedRemaining), s.PointsAccrued)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// SaveSession persists every mutable session field.
func (r *SessionRepo) SaveSession(ctx context.Context, s *model.Session) error {
	_, err := r.ex.ExecContext(ctx,
		`UPDATE sessions SET post_id = ?, game_id = ?, paid_minutes = ?, start_time = ?,
		 end_time = ?, status = ?, paused_remaining_secs = ?, points_accrued = ?
		 WHERE id = ?`,
		s.PostID, s.GameID, int64(s.PaidDuration/time.Minute), s.StartTime.UTC(),
		nullableTime(s.EndTime), s.Status, nullableSecs(s.PausedRemaining), s.PointsAccrued,
		s.ID)
	return err
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullableSecs(d *time.Duration) any {
	if d == nil {
		return nil
	}
	return int64(*d / time.Second)
}
