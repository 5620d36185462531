package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

var t0 = time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

// receiptRecorder captures published receipts for assertions.
type receiptRecorder struct {
	receipts []Receipt
}

func (r *receiptRecorder) PublishReceipt(ctx context.Context, rc Receipt) error {
	r.receipts = append(r.receipts, rc)
	return nil
}

// fixture builds a floor with two working posts, one game on both, and
// two registered clients.
func fixture() (*memStores, *receiptRecorder, *Lifecycle) {
	mem := newMemStores()
	mem.games[1] = &model.Game{ID: 1, Title: "Street Racer"}
	mem.posts[1] = &model.Post{ID: 1, Name: "Post 1", GameIDs: []uint64{1}}
	mem.posts[2] = &model.Post{ID: 2, Name: "Post 2", GameIDs: []uint64{1}}
	mem.posts[3] = &model.Post{ID: 3, Name: "Post 3", OutOfService: true, GameIDs: []uint64{1}}
	mem.clients[1] = &model.Client{ID: 1, FullName: "Ana"}
	mem.clients[2] = &model.Client{ID: 2, FullName: "Bela"}
	rec := &receiptRecorder{}
	lc := NewLifecycle(mem.view(), mem, rec, nil, nil)
	return mem, rec, lc
}

func createParams(clientID, postID uint64, minutes int) CreateParams {
	return CreateParams{
		ClientID:     clientID,
		PostID:       postID,
		GameID:       1,
		PaidDuration: time.Duration(minutes) * time.Minute,
		PaymentMode:  "CASH",
		OperatorID:   42,
	}
}

func TestCreateSession(t *testing.T) {
	mem, rec, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)

	assert.Equal(t, "500.00", res.Price.StringFixed(2))
	assert.Equal(t, model.StatusActive, res.Session.Status)
	assert.Equal(t, t0, res.Session.StartTime)
	require.NotNil(t, res.Session.EndTime)
	assert.Equal(t, t0.Add(30*time.Minute), *res.Session.EndTime)
	assert.Equal(t, res.Reservation.ID, res.Session.ReservationID)
	assert.Regexp(t, `^TK-[0-9A-F]{10}$`, res.Reservation.TicketNumber)
	assert.Equal(t, uint64(42), res.Reservation.OperatorID)

	require.Len(t, mem.payments, 1)
	assert.Equal(t, "500.00", mem.payments[0].Amount.StringFixed(2))
	assert.Equal(t, "CASH", mem.payments[0].Mode)

	require.Len(t, rec.receipts, 1)
	assert.Equal(t, "BOOKING", rec.receipts[0].Kind)
	assert.Equal(t, 30, rec.receipts[0].Minutes)
}

func TestCreateValidation(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	_, err := lc.Create(ctx, t0, createParams(1, 1, 10))
	assert.ErrorIs(t, err, ErrDurationTooShort)
	assert.ErrorIs(t, err, ErrValidation)

	p := createParams(1, 1, 30)
	p.PaymentMode = "  "
	_, err = lc.Create(ctx, t0, p)
	assert.ErrorIs(t, err, ErrPaymentModeRequired)

	_, err = lc.Create(ctx, t0, createParams(99, 1, 30))
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = lc.Create(ctx, t0, createParams(1, 99, 30))
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = lc.Create(ctx, t0, createParams(1, 3, 30))
	assert.ErrorIs(t, err, ErrPostOutOfService)

	p = createParams(1, 1, 30)
	p.GameID = 77
	_, err = lc.Create(ctx, t0, p)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestCreateGameNotOnPost(t *testing.T) {
	mem, _, lc := fixture()
	mem.games[2] = &model.Game{ID: 2, Title: "Puzzle Box"}

	p := createParams(1, 1, 30)
	p.GameID = 2
	_, err := lc.Create(context.Background(), t0, p)
	assert.ErrorIs(t, err, ErrGameNotOnPost)
}

func TestCreateAdmissionControl(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	_, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)

	// Post 1 is taken.
	_, err = lc.Create(ctx, t0, createParams(2, 1, 30))
	assert.ErrorIs(t, err, ErrPostOccupied)
	assert.ErrorIs(t, err, ErrConflict)

	// Client 1 is already playing, even on a free post.
	_, err = lc.Create(ctx, t0, createParams(1, 2, 30))
	assert.ErrorIs(t, err, ErrClientHasActiveSession)
}

func TestCreateWithReservationPromotion(t *testing.T) {
	mem, _, lc := fixture()
	ctx := context.Background()

	valid := promo(1, model.PromotionReservation, "0.10", t0.AddDate(0, 0, -1), t0.AddDate(0, 0, 1))
	product := promo(2, model.PromotionProduct, "0.10", t0.AddDate(0, 0, -1), t0.AddDate(0, 0, 1))
	expired := promo(3, model.PromotionReservation, "0.10", t0.AddDate(0, -2, 0), t0.AddDate(0, -1, 0))
	mem.promotions[1] = &valid
	mem.promotions[2] = &product
	mem.promotions[3] = &expired

	p := createParams(1, 1, 30)
	id := uint64(1)
	p.PromotionID = &id
	res, err := lc.Create(ctx, t0, p)
	require.NoError(t, err)
	assert.Equal(t, "450.00", res.Price.StringFixed(2))
	assert.Equal(t, "450.00", res.Reservation.TotalPrice.StringFixed(2))

	p = createParams(2, 2, 30)
	id = 2
	p.PromotionID = &id
	_, err = lc.Create(ctx, t0, p)
	assert.ErrorIs(t, err, ErrPromotionKind)

	id = 3
	p.PromotionID = &id
	_, err = lc.Create(ctx, t0, p)
	assert.ErrorIs(t, err, ErrPromotionNotValid)
}

func TestRemainingTime(t *testing.T) {
	s := &model.Session{
		Status:       model.StatusActive,
		StartTime:    t0,
		PaidDuration: 30 * time.Minute,
	}
	assert.Equal(t, 30*time.Minute, RemainingTime(s, t0))
	assert.Equal(t, 20*time.Minute, RemainingTime(s, t0.Add(10*time.Minute)))
	assert.Equal(t, time.Duration(0), RemainingTime(s, t0.Add(45*time.Minute)), "never negative")

	rem := 12 * time.Minute
	s.Status = model.StatusPaused
	s.PausedRemaining = &rem
	assert.Equal(t, rem, RemainingTime(s, t0.Add(2*time.Hour)), "frozen while paused")

	s.Status = model.StatusCompleted
	assert.Equal(t, time.Duration(0), RemainingTime(s, t0))
}

func TestPauseSnapshotsRemainingAndFreesPost(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)

	paused, err := lc.Pause(ctx, t0.Add(10*time.Minute), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaused, paused.Status)
	require.NotNil(t, paused.PausedRemaining)
	assert.Equal(t, 20*time.Minute, *paused.PausedRemaining)

	// The post is free the moment the session pauses.
	_, err = lc.Create(ctx, t0.Add(11*time.Minute), createParams(2, 1, 15))
	require.NoError(t, err)
}

func TestPauseRequiresActive(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)
	_, err = lc.Pause(ctx, t0.Add(5*time.Minute), res.Session.ID)
	require.NoError(t, err)

	_, err = lc.Pause(ctx, t0.Add(6*time.Minute), res.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotActive)
	assert.ErrorIs(t, err, ErrState)
}

func TestResumeRestartsClock(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)
	_, err = lc.Pause(ctx, t0.Add(10*time.Minute), res.Session.ID)
	require.NoError(t, err)

	at := t0.Add(25 * time.Minute)
	resumed, err := lc.Resume(ctx, at, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, resumed.Status)
	assert.Nil(t, resumed.PausedRemaining)
	// 10 minutes were consumed before the pause, so the clock restarts
	// as if play had begun 10 minutes ago.
	assert.Equal(t, at.Add(-10*time.Minute), resumed.StartTime)
	require.NotNil(t, resumed.EndTime)
	assert.Equal(t, at.Add(20*time.Minute), *resumed.EndTime)
	assert.Equal(t, 20*time.Minute, RemainingTime(resumed, at))
}

func TestResumeGuards(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)

	// Not paused yet.
	_, err = lc.Resume(ctx, t0.Add(5*time.Minute), res.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotPaused)

	_, err = lc.Pause(ctx, t0.Add(10*time.Minute), res.Session.ID)
	require.NoError(t, err)

	// Another client has taken the post in the meantime.
	res2, err := lc.Create(ctx, t0.Add(11*time.Minute), createParams(2, 1, 15))
	require.NoError(t, err)
	_, err = lc.Resume(ctx, t0.Add(12*time.Minute), res.Session.ID)
	assert.ErrorIs(t, err, ErrPostOccupied)

	// Free the post again and resume fine.
	_, err = lc.Terminate(ctx, t0.Add(13*time.Minute), res2.Session.ID)
	require.NoError(t, err)
	_, err = lc.Resume(ctx, t0.Add(14*time.Minute), res.Session.ID)
	require.NoError(t, err)
}

func TestResumeWithNothingLeftCompletes(t *testing.T) {
	mem, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)
	// Paused only after the paid time had fully run out.
	_, err = lc.Pause(ctx, t0.Add(40*time.Minute), res.Session.ID)
	require.NoError(t, err)

	out, err := lc.Resume(ctx, t0.Add(50*time.Minute), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, out.Status)
	// Completion settles the loyalty points for the full paid time.
	assert.Equal(t, uint32(2), mem.clients[1].LoyaltyPoints)
}

func TestResumeToNewPost(t *testing.T) {
	mem, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)
	_, err = lc.Pause(ctx, t0.Add(10*time.Minute), res.Session.ID)
	require.NoError(t, err)

	at := t0.Add(30 * time.Minute)
	replacement, err := lc.ResumeToNewPost(ctx, at, ResumeToNewPostParams{
		ClientID:      1,
		TargetPostID:  2,
		GameID:        1,
		RemainingTime: 20 * time.Minute,
	})
	require.NoError(t, err)
	assert.NotEqual(t, res.Session.ID, replacement.ID)
	assert.Equal(t, uint64(2), replacement.PostID)
	assert.Equal(t, 20*time.Minute, replacement.PaidDuration)
	assert.Equal(t, res.Reservation.ID, replacement.ReservationID)

	old := mem.sessions[res.Session.ID]
	assert.Equal(t, model.StatusCompleted, old.Status)

	reservation := mem.reservations[res.Reservation.ID]
	assert.Equal(t, uint64(2), reservation.PostID)
	assert.Equal(t, 20*time.Minute, reservation.Duration)
	assert.Equal(t, model.StatusActive, reservation.Status)

	// Only the 10 minutes actually played on the old post counted for
	// points so far; 10 < 15 earns nothing yet.
	assert.Equal(t, uint32(0), mem.clients[1].LoyaltyPoints)

	// Finishing the replacement settles the remaining 20 minutes.
	_, err = lc.Terminate(ctx, at.Add(20*time.Minute), replacement.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), mem.clients[1].LoyaltyPoints)
}

func TestResumeToNewPostGuards(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	_, err := lc.ResumeToNewPost(ctx, t0, ResumeToNewPostParams{ClientID: 1, TargetPostID: 2, GameID: 1})
	assert.ErrorIs(t, err, ErrInvalidRemainingTime)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = lc.ResumeToNewPost(ctx, t0, ResumeToNewPostParams{
		ClientID: 1, TargetPostID: 2, GameID: 1, RemainingTime: 10 * time.Minute,
	})
	assert.ErrorIs(t, err, ErrNoPausedSession)

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)
	_, err = lc.Pause(ctx, t0.Add(10*time.Minute), res.Session.ID)
	require.NoError(t, err)

	// Target post occupied by someone else.
	_, err = lc.Create(ctx, t0.Add(11*time.Minute), createParams(2, 2, 15))
	require.NoError(t, err)
	_, err = lc.ResumeToNewPost(ctx, t0.Add(12*time.Minute), ResumeToNewPostParams{
		ClientID: 1, TargetPostID: 2, GameID: 1, RemainingTime: 20 * time.Minute,
	})
	assert.ErrorIs(t, err, ErrPostOccupied)

	// Out-of-service target.
	_, err = lc.ResumeToNewPost(ctx, t0.Add(12*time.Minute), ResumeToNewPostParams{
		ClientID: 1, TargetPostID: 3, GameID: 1, RemainingTime: 20 * time.Minute,
	})
	assert.ErrorIs(t, err, ErrPostOutOfService)
}

func TestExtendActiveSession(t *testing.T) {
	mem, rec, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)

	out, err := lc.Extend(ctx, t0.Add(20*time.Minute), res.Session.ID, 15, "CARD", 42)
	require.NoError(t, err)
	assert.Equal(t, "300.00", out.Price.StringFixed(2))
	assert.Equal(t, 45*time.Minute, out.Session.PaidDuration)
	require.NotNil(t, out.Session.EndTime)
	assert.Equal(t, t0.Add(45*time.Minute), *out.Session.EndTime)
	assert.Equal(t, "800.00", out.Reservation.TotalPrice.StringFixed(2))
	assert.Equal(t, 45*time.Minute, out.Reservation.Duration)

	// The extension's points are granted immediately.
	assert.Equal(t, uint32(1), out.Session.PointsAccrued)
	assert.Equal(t, uint32(1), mem.clients[1].LoyaltyPoints)

	require.Len(t, mem.payments, 2)
	assert.Equal(t, "300.00", mem.payments[1].Amount.StringFixed(2))
	assert.Equal(t, "CARD", mem.payments[1].Mode)

	require.Len(t, rec.receipts, 2)
	assert.Equal(t, "EXTENSION", rec.receipts[1].Kind)
	assert.Equal(t, 15, rec.receipts[1].Minutes)
}

func TestExtendPausedSessionGrowsRemainder(t *testing.T) {
	mem, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)
	_, err = lc.Pause(ctx, t0.Add(10*time.Minute), res.Session.ID)
	require.NoError(t, err)

	out, err := lc.Extend(ctx, t0.Add(15*time.Minute), res.Session.ID, 30, "CASH", 42)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaused, out.Session.Status)
	require.NotNil(t, out.Session.PausedRemaining)
	assert.Equal(t, 50*time.Minute, *out.Session.PausedRemaining)
	assert.Equal(t, 60*time.Minute, out.Session.PaidDuration)
	assert.Equal(t, uint32(2), mem.clients[1].LoyaltyPoints)
}

func TestExtendGuards(t *testing.T) {
	_, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)

	_, err = lc.Extend(ctx, t0, res.Session.ID, 10, "CASH", 42)
	assert.ErrorIs(t, err, ErrDurationTooShort)

	_, err = lc.Extend(ctx, t0, res.Session.ID, 15, "", 42)
	assert.ErrorIs(t, err, ErrPaymentModeRequired)

	_, err = lc.Terminate(ctx, t0.Add(5*time.Minute), res.Session.ID)
	require.NoError(t, err)
	_, err = lc.Extend(ctx, t0.Add(6*time.Minute), res.Session.ID, 15, "CASH", 42)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestTerminateSettlesPointsOnce(t *testing.T) {
	mem, _, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 45))
	require.NoError(t, err)

	out, err := lc.Terminate(ctx, t0.Add(50*time.Minute), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, out.Status)
	assert.Equal(t, uint32(3), mem.clients[1].LoyaltyPoints)

	// Terminating again is a no-op, not an error, and grants nothing.
	_, err = lc.Terminate(ctx, t0.Add(60*time.Minute), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), mem.clients[1].LoyaltyPoints)
}

func TestReferralPointsFollowClientPoints(t *testing.T) {
	mem, _, lc := fixture()
	ctx := context.Background()
	mem.referrers[1] = &model.Referrer{ID: 1, FullName: "Rex", Code: "REX10"}

	p := createParams(1, 1, 30)
	p.ReferralCode = "REX10"
	res, err := lc.Create(ctx, t0, p)
	require.NoError(t, err)

	_, err = lc.Extend(ctx, t0.Add(20*time.Minute), res.Session.ID, 15, "CASH", 42)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), mem.referrers[1].ReferralPoints)

	_, err = lc.Terminate(ctx, t0.Add(45*time.Minute), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), mem.clients[1].LoyaltyPoints)
	assert.Equal(t, uint32(3), mem.referrers[1].ReferralPoints)
}

// TestFullVisitScenario walks one client through a whole visit:
// book 30 minutes, pause after 10, resume, extend by a discounted
// 15-minute block, and finish. Money and points must come out to
// 770.00 and 3 points.
func TestFullVisitScenario(t *testing.T) {
	mem, rec, lc := fixture()
	ctx := context.Background()

	res, err := lc.Create(ctx, t0, createParams(1, 1, 30))
	require.NoError(t, err)
	assert.Equal(t, "500.00", res.Price.StringFixed(2))

	_, err = lc.Pause(ctx, t0.Add(10*time.Minute), res.Session.ID)
	require.NoError(t, err)

	resumed, err := lc.Resume(ctx, t0.Add(20*time.Minute), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, RemainingTime(resumed, t0.Add(20*time.Minute)))

	// A 10% reservation promotion starts mid-visit and is attached to
	// the reservation; the extension is discounted, the original
	// booking price stays as charged.
	p10 := promo(5, model.PromotionReservation, "0.10", t0.Add(15*time.Minute), t0.AddDate(0, 0, 1))
	mem.promotions[5] = &p10
	promoID := uint64(5)
	mem.reservations[res.Reservation.ID].PromotionID = &promoID

	ext, err := lc.Extend(ctx, t0.Add(25*time.Minute), res.Session.ID, 15, "CASH", 42)
	require.NoError(t, err)
	assert.Equal(t, "270.00", ext.Price.StringFixed(2))
	assert.Equal(t, "770.00", ext.Reservation.TotalPrice.StringFixed(2))
	assert.Equal(t, 45*time.Minute, ext.Session.PaidDuration)

	out, err := lc.Terminate(ctx, t0.Add(70*time.Minute), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, out.Status)

	// 45 paid minutes -> 3 points: 1 from the extension, 2 settled at
	// completion.
	assert.Equal(t, uint32(3), mem.clients[1].LoyaltyPoints)

	// One receipt per charge.
	require.Len(t, rec.receipts, 2)
	assert.Equal(t, "BOOKING", rec.receipts[0].Kind)
	assert.Equal(t, "500.00", rec.receipts[0].Amount.StringFixed(2))
	assert.Equal(t, "EXTENSION", rec.receipts[1].Kind)
	assert.Equal(t, "270.00", rec.receipts[1].Amount.StringFixed(2))

	require.Len(t, mem.payments, 2)
}
