package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-room-reservation/internal/model"
	"github.com/iliyamo/game-room-reservation/internal/monitoring"
)

// Lifecycle is the state machine governing play sessions.  Every
// operation takes the current instant explicitly, acquires the locks
// of the involved post and client, and performs its admission checks
// and mutations inside one transaction, so a read-then-write race
// between two concurrent operations on the same post or client cannot
// let both succeed.  Sessions and their reservations are always
// persisted together.
type Lifecycle struct {
	stores   Stores
	atomic   Atomic
	alloc    *PostAllocator
	ledger   *LoyaltyLedger
	receipts ReceiptPublisher
	metrics  *monitoring.Metrics
	locks    *entityLocks
	logger   *log.Logger
}

// NewLifecycle wires the state machine.  receipts and metrics may be
// nil; receipt delivery failures are logged and never fail the
// operation that produced them.
func NewLifecycle(stores Stores, atomic Atomic, receipts ReceiptPublisher, metrics *monitoring.Metrics, logger *log.Logger) *Lifecycle {
	return &Lifecycle{
		stores:   stores,
		atomic:   atomic,
		alloc:    NewPostAllocator(),
		ledger:   NewLoyaltyLedger(logger),
		receipts: receipts,
		metrics:  metrics,
		locks:    newEntityLocks(),
		logger:   logger,
	}
}

// RemainingTime returns how much paid time the session still has at
// the given instant.  It is a pure query and never mutates state.
func RemainingTime(s *model.Session, now time.Time) time.Duration {
	switch s.Status {
	case model.StatusPaused:
		if s.PausedRemaining != nil {
			return *s.PausedRemaining
		}
		return 0
	case model.StatusCompleted:
		return 0
	default:
		rem := s.PaidDuration - now.Sub(s.StartTime)
		if rem < 0 {
			return 0
		}
		return rem
	}
}

// CreateParams carries everything needed to open a session.  The
// operator is passed explicitly: payments are attributed to the
// acting account, never read from ambient state.
type CreateParams struct {
	ClientID     uint64
	PostID       uint64
	GameID       uint64
	PaidDuration time.Duration
	PromotionID  *uint64 // reservation-kind promotion, optional
	ReferralCode string  // sponsor code, optional
	PaymentMode  string
	OperatorID   uint64
}

// CreateResult is returned by Create.
type CreateResult struct {
	Session     *model.Session
	Reservation *model.Reservation
	Price       decimal.Decimal
}

// Create opens a reservation and its session in one step.  Sessions
// are created already running: the clock starts at now and the post
// is occupied immediately.  The price is the tier price of the booked
// duration, discounted when a valid reservation promotion is applied,
// and a payment is recorded for it.
func (lc *Lifecycle) Create(ctx context.Context, now time.Time, p CreateParams) (*CreateResult, error) {
	minutes := int(p.PaidDuration / time.Minute)
	if minutes < 15 {
		return nil, lc.fail("create", ErrDurationTooShort)
	}
	if strings.TrimSpace(p.PaymentMode) == "" {
		return nil, lc.fail("create", ErrPaymentModeRequired)
	}

	release := lc.locks.acquire(postKey(p.PostID), clientKey(p.ClientID))
	defer release()

	var res CreateResult
	err := lc.atomic.InTx(ctx, func(s Stores) error {
		if _, err := s.Clients.ClientByID(ctx, p.ClientID); err != nil {
			return err
		}
		if active, err := s.Sessions.ActiveByClient(ctx, p.ClientID); err != nil {
			return err
		} else if active != nil {
			return ErrClientHasActiveSession
		}
		post, err := s.Posts.PostByID(ctx, p.PostID)
		if err != nil {
			return err
		}
		if post.OutOfService {
			return ErrPostOutOfService
		}
		if _, err := s.Games.GameByID(ctx, p.GameID); err != nil {
			return err
		}
		if !post.Supports(p.GameID) {
			return ErrGameNotOnPost
		}
		free, err := lc.alloc.IsAvailable(ctx, s, p.PostID)
		if err != nil {
			return err
		}
		if !free {
			return ErrPostOccupied
		}

		price := TierPrice(minutes)
		if p.PromotionID != nil {
			promo, err := s.Catalog.PromotionByID(ctx, *p.PromotionID)
			if err != nil {
				return err
			}
			if promo.Kind != model.PromotionReservation {
				return ErrPromotionKind
			}
			if !PromotionValid(promo, now) {
				return ErrPromotionNotValid
			}
			price = ApplyDiscount(price, promo.DiscountRate)
		}

		ticket, err := newTicketNumber()
		if err != nil {
			return err
		}
		var refCode *string
		if c := strings.TrimSpace(p.ReferralCode); c != "" {
			refCode = &c
		}
		reservation := &model.Reservation{
			ClientID:        p.ClientID,
			PostID:          p.PostID,
			GameID:          p.GameID,
			PromotionID:     p.PromotionID,
			OperatorID:      p.OperatorID,
			ReservationDate: now,
			Duration:        p.PaidDuration,
			TicketNumber:    ticket,
			TotalPrice:      price,
			Status:          model.StatusActive,
			ReferralCode:    refCode,
		}
		if err := s.Reservations.CreateReservation(ctx, reservation); err != nil {
			return err
		}
		end := now.Add(p.PaidDuration)
		session := &model.Session{
			ClientID:      p.ClientID,
			PostID:        p.PostID,
			GameID:        p.GameID,
			ReservationID: reservation.ID,
			PaidDuration:  p.PaidDuration,
			StartTime:     now,
			EndTime:       &end,
			Status:        model.StatusActive,
		}
		if err := s.Sessions.CreateSession(ctx, session); err != nil {
			return err
		}
		if err := s.Payments.CreatePayment(ctx, &model.Payment{
			TicketNumber: ticket,
			Amount:       price,
			Mode:         p.PaymentMode,
			OperatorID:   p.OperatorID,
			PaidAt:       now,
		}); err != nil {
			return err
		}
		res = CreateResult{Session: session, Reservation: reservation, Price: price}
		return nil
	})
	if err != nil {
		return nil, lc.fail("create", err)
	}

	lc.metrics.Transition("create", "ok")
	lc.metrics.PostOccupied(1)
	amt, _ := res.Price.Float64()
	lc.metrics.Revenue("booking", amt)
	lc.publishReceipt(ctx, Receipt{
		TicketNumber: res.Reservation.TicketNumber,
		ClientID:     p.ClientID,
		PostID:       p.PostID,
		Minutes:      minutes,
		Amount:       res.Price,
		PaymentMode:  p.PaymentMode,
		OperatorID:   p.OperatorID,
		IssuedAt:     now,
		Kind:         "BOOKING",
	})
	return &res, nil
}

// Pause freezes an active session's clock.  The remaining paid time
// is snapshotted and the post is freed immediately: occupancy follows
// ACTIVE status alone, so a paused session holds no claim on any post
// until it is resumed.
func (lc *Lifecycle) Pause(ctx context.Context, now time.Time, sessionID uint64) (*model.Session, error) {
	keys, err := lc.lockKeysFor(ctx, sessionID)
	if err != nil {
		return nil, lc.fail("pause", err)
	}
	release := lc.locks.acquire(keys...)
	defer release()

	var out *model.Session
	err = lc.atomic.InTx(ctx, func(s Stores) error {
		session, reservation, err := lc.loadPair(ctx, s, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.StatusActive {
			return ErrSessionNotActive
		}
		remaining := session.StartTime.Add(session.PaidDuration).Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		session.PausedRemaining = &remaining
		session.Status = model.StatusPaused
		reservation.Status = model.StatusPaused
		if err := s.Sessions.SaveSession(ctx, session); err != nil {
			return err
		}
		if err := s.Reservations.SaveReservation(ctx, reservation); err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, lc.fail("pause", err)
	}
	lc.metrics.Transition("pause", "ok")
	lc.metrics.PostOccupied(-1)
	return out, nil
}

// Resume restarts a paused session on its reservation's post.  The
// client must not be playing elsewhere and the post must be free.  A
// session resumed with nothing left simply completes.
func (lc *Lifecycle) Resume(ctx context.Context, now time.Time, sessionID uint64) (*model.Session, error) {
	keys, err := lc.lockKeysFor(ctx, sessionID)
	if err != nil {
		return nil, lc.fail("resume", err)
	}
	release := lc.locks.acquire(keys...)
	defer release()

	completed := false
	var out *model.Session
	err = lc.atomic.InTx(ctx, func(s Stores) error {
		session, reservation, err := lc.loadPair(ctx, s, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.StatusPaused {
			return ErrSessionNotPaused
		}
		if active, err := s.Sessions.ActiveByClient(ctx, session.ClientID); err != nil {
			return err
		} else if active != nil {
			return ErrClientHasActiveSession
		}
		targetPost := reservation.PostID
		free, err := lc.alloc.IsAvailable(ctx, s, targetPost)
		if err != nil {
			return err
		}
		if !free {
			return ErrPostOccupied
		}

		remaining := time.Duration(0)
		if session.PausedRemaining != nil {
			remaining = *session.PausedRemaining
		}
		if remaining == 0 {
			if err := lc.complete(ctx, s, session, reservation, now, session.PaidDuration); err != nil {
				return err
			}
			completed = true
			out = session
			return nil
		}
		session.StartTime = now.Add(-(session.PaidDuration - remaining))
		end := now.Add(remaining)
		session.EndTime = &end
		session.Status = model.StatusActive
		session.PausedRemaining = nil
		reservation.Status = model.StatusActive
		if err := s.Sessions.SaveSession(ctx, session); err != nil {
			return err
		}
		if err := s.Reservations.SaveReservation(ctx, reservation); err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, lc.fail("resume", err)
	}
	lc.metrics.Transition("resume", "ok")
	if !completed {
		lc.metrics.PostOccupied(1)
	}
	return out, nil
}

// ResumeToNewPostParams carries the relocation request used when the
// original post cannot host the resumed session.
type ResumeToNewPostParams struct {
	ClientID      uint64
	TargetPostID  uint64
	GameID        uint64
	RemainingTime time.Duration
}

// ResumeToNewPost closes the client's paused session and continues
// the remaining time as a fresh session on another post.  The new
// session carries the same reservation, whose post, game, duration
// and status are rebound to the new play.
func (lc *Lifecycle) ResumeToNewPost(ctx context.Context, now time.Time, p ResumeToNewPostParams) (*model.Session, error) {
	if p.RemainingTime <= 0 {
		return nil, lc.fail("resume_to_new_post", ErrInvalidRemainingTime)
	}

	release := lc.locks.acquire(postKey(p.TargetPostID), clientKey(p.ClientID))
	defer release()

	var out *model.Session
	err := lc.atomic.InTx(ctx, func(s Stores) error {
		if active, err := s.Sessions.ActiveByClient(ctx, p.ClientID); err != nil {
			return err
		} else if active != nil {
			return ErrClientHasActiveSession
		}
		paused, err := s.Sessions.PausedByClient(ctx, p.ClientID)
		if err != nil {
			return err
		}
		if paused == nil {
			return ErrNoPausedSession
		}
		post, err := s.Posts.PostByID(ctx, p.TargetPostID)
		if err != nil {
			return err
		}
		if post.OutOfService {
			return ErrPostOutOfService
		}
		if !post.Supports(p.GameID) {
			return ErrGameNotOnPost
		}
		free, err := lc.alloc.IsAvailable(ctx, s, p.TargetPostID)
		if err != nil {
			return err
		}
		if !free {
			return ErrPostOccupied
		}
		reservation, err := s.Reservations.ReservationByID(ctx, paused.ReservationID)
		if err != nil {
			return err
		}

		// Close the paused session.  Only the time actually consumed
		// on it counts for loyalty; the remainder keeps earning on
		// the replacement session.
		consumed := paused.PaidDuration
		if paused.PausedRemaining != nil {
			consumed -= *paused.PausedRemaining
		}
		paused.Status = model.StatusCompleted
		end := now
		paused.EndTime = &end
		paused.PausedRemaining = nil
		if err := lc.accrueCompletion(ctx, s, paused, reservation, consumed); err != nil {
			return err
		}
		if err := s.Sessions.SaveSession(ctx, paused); err != nil {
			return err
		}

		replacementEnd := now.Add(p.RemainingTime)
		replacement := &model.Session{
			ClientID:      p.ClientID,
			PostID:        p.TargetPostID,
			GameID:        p.GameID,
			ReservationID: reservation.ID,
			PaidDuration:  p.RemainingTime,
			StartTime:     now,
			EndTime:       &replacementEnd,
			Status:        model.StatusActive,
		}
		if err := s.Sessions.CreateSession(ctx, replacement); err != nil {
			return err
		}
		reservation.PostID = p.TargetPostID
		reservation.GameID = p.GameID
		reservation.Duration = p.RemainingTime
		reservation.Status = model.StatusActive
		if err := s.Reservations.SaveReservation(ctx, reservation); err != nil {
			return err
		}
		out = replacement
		return nil
	})
	if err != nil {
		return nil, lc.fail("resume_to_new_post", err)
	}
	lc.metrics.Transition("resume_to_new_post", "ok")
	lc.metrics.PostOccupied(1)
	return out, nil
}

// ExtendResult is returned by Extend.
type ExtendResult struct {
	Session     *model.Session
	Reservation *model.Reservation
	Price       decimal.Decimal
}

// Extend adds paid time to a session.  The extension is priced as a
// fresh block, discounted when the reservation's promotion is still
// valid today, charged as a payment attributed to the operator, and
// immediately earns loyalty (and referral) points.  Both the session
// and the reservation grow by the same minutes.  Paused sessions can
// be extended too; their frozen remainder grows accordingly.
func (lc *Lifecycle) Extend(ctx context.Context, now time.Time, sessionID uint64, additionalMinutes int, paymentMode string, operatorID uint64) (*ExtendResult, error) {
	if additionalMinutes < 15 {
		return nil, lc.fail("extend", ErrDurationTooShort)
	}
	if strings.TrimSpace(paymentMode) == "" {
		return nil, lc.fail("extend", ErrPaymentModeRequired)
	}

	keys, err := lc.lockKeysFor(ctx, sessionID)
	if err != nil {
		return nil, lc.fail("extend", err)
	}
	release := lc.locks.acquire(keys...)
	defer release()

	var res ExtendResult
	err = lc.atomic.InTx(ctx, func(s Stores) error {
		session, reservation, err := lc.loadPair(ctx, s, sessionID)
		if err != nil {
			return err
		}
		if session.Status == model.StatusCompleted {
			return ErrSessionCompleted
		}

		price := ExtensionPrice(additionalMinutes)
		if reservation.PromotionID != nil {
			promo, err := s.Catalog.PromotionByID(ctx, *reservation.PromotionID)
			if err != nil {
				return err
			}
			if PromotionValid(promo, now) {
				price = ApplyDiscount(price, promo.DiscountRate)
			}
		}

		added := time.Duration(additionalMinutes) * time.Minute
		session.PaidDuration += added
		if session.Status == model.StatusPaused && session.PausedRemaining != nil {
			grown := *session.PausedRemaining + added
			session.PausedRemaining = &grown
		} else if session.EndTime != nil {
			end := session.StartTime.Add(session.PaidDuration)
			session.EndTime = &end
		}
		reservation.Duration += added
		reservation.TotalPrice = reservation.TotalPrice.Add(price)

		points := PointsFor(additionalMinutes)
		if err := lc.ledger.CreditClient(ctx, s, session.ClientID, points); err != nil {
			return err
		}
		if reservation.ReferralCode != nil {
			if err := lc.ledger.CreditReferrer(ctx, s, *reservation.ReferralCode, points); err != nil {
				return err
			}
		}
		session.PointsAccrued += points

		if err := s.Payments.CreatePayment(ctx, &model.Payment{
			TicketNumber: reservation.TicketNumber,
			Amount:       price,
			Mode:         paymentMode,
			OperatorID:   operatorID,
			PaidAt:       now,
		}); err != nil {
			return err
		}
		if err := s.Sessions.SaveSession(ctx, session); err != nil {
			return err
		}
		if err := s.Reservations.SaveReservation(ctx, reservation); err != nil {
			return err
		}
		res = ExtendResult{Session: session, Reservation: reservation, Price: price}
		return nil
	})
	if err != nil {
		return nil, lc.fail("extend", err)
	}

	lc.metrics.Transition("extend", "ok")
	amt, _ := res.Price.Float64()
	lc.metrics.Revenue("extension", amt)
	lc.metrics.PointsGranted(PointsFor(additionalMinutes))
	lc.publishReceipt(ctx, Receipt{
		TicketNumber: res.Reservation.TicketNumber,
		ClientID:     res.Session.ClientID,
		PostID:       res.Session.PostID,
		Minutes:      additionalMinutes,
		Amount:       res.Price,
		PaymentMode:  paymentMode,
		OperatorID:   operatorID,
		IssuedAt:     now,
		Kind:         "EXTENSION",
	})
	return &res, nil
}

// Terminate completes a session.  It has no precondition beyond
// existence: terminating an already completed session changes
// nothing.  Completion frees the post and tops the client's (and
// sponsor's) points up to the full paid duration.
func (lc *Lifecycle) Terminate(ctx context.Context, now time.Time, sessionID uint64) (*model.Session, error) {
	keys, err := lc.lockKeysFor(ctx, sessionID)
	if err != nil {
		return nil, lc.fail("terminate", err)
	}
	release := lc.locks.acquire(keys...)
	defer release()

	wasActive := false
	var out *model.Session
	err = lc.atomic.InTx(ctx, func(s Stores) error {
		session, reservation, err := lc.loadPair(ctx, s, sessionID)
		if err != nil {
			return err
		}
		if session.Status == model.StatusCompleted {
			out = session
			return nil
		}
		wasActive = session.Status == model.StatusActive
		if err := lc.complete(ctx, s, session, reservation, now, session.PaidDuration); err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, lc.fail("terminate", err)
	}
	lc.metrics.Transition("terminate", "ok")
	if wasActive {
		lc.metrics.PostOccupied(-1)
	}
	return out, nil
}

// complete marks the pair completed, persists it and accrues the
// completion points for the given consumed duration.
func (lc *Lifecycle) complete(ctx context.Context, s Stores, session *model.Session, reservation *model.Reservation, now time.Time, consumed time.Duration) error {
	session.Status = model.StatusCompleted
	end := now
	session.EndTime = &end
	session.PausedRemaining = nil
	reservation.Status = model.StatusCompleted
	if err := lc.accrueCompletion(ctx, s, session, reservation, consumed); err != nil {
		return err
	}
	if err := s.Sessions.SaveSession(ctx, session); err != nil {
		return err
	}
	return s.Reservations.SaveReservation(ctx, reservation)
}

// accrueCompletion grants the points still owed for a finished
// session: the full entitlement for the consumed duration minus what
// extensions already granted.  Referral points follow the same delta.
func (lc *Lifecycle) accrueCompletion(ctx context.Context, s Stores, session *model.Session, reservation *model.Reservation, consumed time.Duration) error {
	total := PointsFor(int(consumed / time.Minute))
	if total <= session.PointsAccrued {
		return nil
	}
	delta := total - session.PointsAccrued
	if err := lc.ledger.CreditClient(ctx, s, session.ClientID, delta); err != nil {
		return err
	}
	if reservation.ReferralCode != nil {
		if err := lc.ledger.CreditReferrer(ctx, s, *reservation.ReferralCode, delta); err != nil {
			return err
		}
	}
	session.PointsAccrued = total
	lc.metrics.PointsGranted(delta)
	return nil
}

// loadPair loads a session together with its reservation.
func (lc *Lifecycle) loadPair(ctx context.Context, s Stores, sessionID uint64) (*model.Session, *model.Reservation, error) {
	session, err := s.Sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	reservation, err := s.Reservations.ReservationByID(ctx, session.ReservationID)
	if err != nil {
		return nil, nil, err
	}
	return session, reservation, nil
}

// lockKeysFor resolves the post and client keys of a session before
// its operation takes the locks.  The session is re-read inside the
// transaction afterwards, so a stale read here only costs a retry on
// the lock, never a wrong admission decision.
func (lc *Lifecycle) lockKeysFor(ctx context.Context, sessionID uint64) ([]string, error) {
	session, err := lc.stores.Sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return []string{postKey(session.PostID), clientKey(session.ClientID)}, nil
}

func (lc *Lifecycle) publishReceipt(ctx context.Context, r Receipt) {
	if lc.receipts == nil {
		return
	}
	if err := lc.receipts.PublishReceipt(ctx, r); err != nil && lc.logger != nil {
		lc.logger.Printf("lifecycle: receipt publish failed for ticket %s: %v", r.TicketNumber, err)
	}
}

func (lc *Lifecycle) fail(op string, err error) error {
	lc.metrics.Transition(op, "error")
	return err
}

// newTicketNumber produces a short random ticket reference.  The
// reservations table carries a unique index on it, so a collision
// surfaces as a conflict instead of a duplicate ticket.
func newTicketNumber() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "TK-" + strings.ToUpper(hex.EncodeToString(b)), nil
}
