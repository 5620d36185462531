package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// ReferrerRepo provides access to the referrers table.  Codes are
// matched case-insensitively by normalizing to upper case, the form
// they are printed in.
type ReferrerRepo struct {
	ex executor
}

// NewReferrerRepo returns a ReferrerRepo bound to the database.
func NewReferrerRepo(db *sql.DB) *ReferrerRepo { return &ReferrerRepo{ex: db} }

// ReferrerByCode resolves a referral code.
func (r *ReferrerRepo) ReferrerByCode(ctx context.Context, code string) (*model.Referrer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var ref model.Referrer
	err := r.ex.QueryRowContext(ctx,
		`SELECT id, full_name, code, referral_points, created_at FROM referrers WHERE code = ?`,
		code).
		Scan(&ref.ID, &ref.FullName, &ref.Code, &ref.ReferralPoints, &ref.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrReferrerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// AddReferralPoints credits points atomically in the database.
func (r *ReferrerRepo) AddReferralPoints(ctx context.Context, referrerID uint64, points uint32) error {
	res, err := r.ex.ExecContext(ctx,
		`UPDATE referrers SET referral_points = referral_points + ? WHERE id = ?`,
		points, referrerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrReferrerNotFound
	}
	return nil
}
