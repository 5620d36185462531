package engine

import (
	"context"
	"errors"
	"log"
)

// LoyaltyLedger accrues loyalty and referral points from paid play
// minutes.  One point is earned per full 15-minute block.  The ledger
// writes through whatever Stores view the caller passes in, so
// accruals join the caller's transaction.
type LoyaltyLedger struct {
	logger *log.Logger
}

// NewLoyaltyLedger returns a ledger that logs skipped referrer
// accruals to the given logger.
func NewLoyaltyLedger(logger *log.Logger) *LoyaltyLedger {
	return &LoyaltyLedger{logger: logger}
}

// PointsFor returns the points earned for the given minutes:
// floor(minutes / 15).  Negative input earns nothing.
func PointsFor(minutes int) uint32 {
	if minutes <= 0 {
		return 0
	}
	return uint32(minutes / 15)
}

// AccrueClient credits the client with the points earned by the given
// minutes.
func (l *LoyaltyLedger) AccrueClient(ctx context.Context, s Stores, clientID uint64, minutes int) error {
	return l.CreditClient(ctx, s, clientID, PointsFor(minutes))
}

// AccrueReferrer credits the referrer identified by code with the
// points earned by the given minutes.
func (l *LoyaltyLedger) AccrueReferrer(ctx context.Context, s Stores, code string, minutes int) error {
	return l.CreditReferrer(ctx, s, code, PointsFor(minutes))
}

// CreditClient adds points to a client's balance.  Crediting zero is
// a no-op.
func (l *LoyaltyLedger) CreditClient(ctx context.Context, s Stores, clientID uint64, points uint32) error {
	if points == 0 {
		return nil
	}
	return s.Clients.AddLoyaltyPoints(ctx, clientID, points)
}

// CreditReferrer adds points to the referrer identified by code.  An
// unknown code is not an error: clients misspell codes all the time,
// and a failed sponsor credit must never block the paying client's
// operation.  The skip is logged.
func (l *LoyaltyLedger) CreditReferrer(ctx context.Context, s Stores, code string, points uint32) error {
	if points == 0 || code == "" {
		return nil
	}
	ref, err := s.Referrers.ReferrerByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if l.logger != nil {
				l.logger.Printf("loyalty: referral code %q not found, skipping accrual", code)
			}
			return nil
		}
		return err
	}
	return s.Referrers.AddReferralPoints(ctx, ref.ID, points)
}
