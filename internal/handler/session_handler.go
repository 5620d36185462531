package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
	"github.com/iliyamo/game-room-reservation/internal/repository"
)

// SessionHandler exposes the session lifecycle over HTTP. All routes
// are operator-facing: the acting account comes from the JWT and is
// attached to every payment.
type SessionHandler struct {
	Lifecycle *engine.Lifecycle
	Store     *repository.Store
}

func NewSessionHandler(lc *engine.Lifecycle, store *repository.Store) *SessionHandler {
	return &SessionHandler{Lifecycle: lc, Store: store}
}

// ----- DTOs -----

type createSessionReq struct {
	ClientID     uint64  `json:"client_id"`
	PostID       uint64  `json:"post_id"`
	GameID       uint64  `json:"game_id"`
	Minutes      int     `json:"minutes"`
	PromotionID  *uint64 `json:"promotion_id,omitempty"`
	ReferralCode string  `json:"referral_code,omitempty"`
	PaymentMode  string  `json:"payment_mode"`
}

type extendSessionReq struct {
	Minutes     int    `json:"minutes"`
	PaymentMode string `json:"payment_mode"`
}

type resumeToPostReq struct {
	ClientID         uint64 `json:"client_id"`
	PostID           uint64 `json:"post_id"`
	GameID           uint64 `json:"game_id"`
	RemainingMinutes int    `json:"remaining_minutes"`
}

type sessionResp struct {
	ID               uint64     `json:"id"`
	ClientID         uint64     `json:"client_id"`
	PostID           uint64     `json:"post_id"`
	GameID           uint64     `json:"game_id"`
	ReservationID    uint64     `json:"reservation_id"`
	Status           string     `json:"status"`
	PaidMinutes      int        `json:"paid_minutes"`
	RemainingMinutes int        `json:"remaining_minutes"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	PointsAccrued    uint32     `json:"points_accrued"`
}

func toSessionResp(s *model.Session, now time.Time) sessionResp {
	return sessionResp{
		ID:               s.ID,
		ClientID:         s.ClientID,
		PostID:           s.PostID,
		GameID:           s.GameID,
		ReservationID:    s.ReservationID,
		Status:           s.Status,
		PaidMinutes:      int(s.PaidDuration / time.Minute),
		RemainingMinutes: int(engine.RemainingTime(s, now) / time.Minute),
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		PointsAccrued:    s.PointsAccrued,
	}
}

// Create opens a reservation and starts its session immediately.
func (h *SessionHandler) Create(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	now := time.Now().UTC()
	res, err := h.Lifecycle.Create(c.Request().Context(), now, engine.CreateParams{
		ClientID:     req.ClientID,
		PostID:       req.PostID,
		GameID:       req.GameID,
		PaidDuration: time.Duration(req.Minutes) * time.Minute,
		PromotionID:  req.PromotionID,
		ReferralCode: strings.TrimSpace(req.ReferralCode),
		PaymentMode:  req.PaymentMode,
		OperatorID:   operatorID(c),
	})
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session":       toSessionResp(res.Session, now),
		"ticket_number": res.Reservation.TicketNumber,
		"total_price":   res.Price.StringFixed(2),
	})
}

// Get returns a session with its live remaining time.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Store.View().Sessions.SessionByID(c.Request().Context(), id)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResp(s, time.Now().UTC()))
}

// Pause freezes a running session and frees its post.
func (h *SessionHandler) Pause(c echo.Context) error {
	return h.transition(c, h.Lifecycle.Pause)
}

// Resume continues a paused session on its original post.
func (h *SessionHandler) Resume(c echo.Context) error {
	return h.transition(c, h.Lifecycle.Resume)
}

// Terminate ends a session early; already-completed sessions are left
// untouched.
func (h *SessionHandler) Terminate(c echo.Context) error {
	return h.transition(c, h.Lifecycle.Terminate)
}

func (h *SessionHandler) transition(c echo.Context, op func(ctx context.Context, now time.Time, id uint64) (*model.Session, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	now := time.Now().UTC()
	s, err := op(c.Request().Context(), now, id)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResp(s, now))
}

// ResumeToPost continues a client's paused session on a different post.
func (h *SessionHandler) ResumeToPost(c echo.Context) error {
	var req resumeToPostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	now := time.Now().UTC()
	s, err := h.Lifecycle.ResumeToNewPost(c.Request().Context(), now, engine.ResumeToNewPostParams{
		ClientID:      req.ClientID,
		TargetPostID:  req.PostID,
		GameID:        req.GameID,
		RemainingTime: time.Duration(req.RemainingMinutes) * time.Minute,
	})
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResp(s, now))
}

// Extend charges for additional minutes on a running or paused session.
func (h *SessionHandler) Extend(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req extendSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	now := time.Now().UTC()
	res, err := h.Lifecycle.Extend(c.Request().Context(), now, id, req.Minutes, req.PaymentMode, operatorID(c))
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session":         toSessionResp(res.Session, now),
		"extension_price": res.Price.StringFixed(2),
		"total_price":     res.Reservation.TotalPrice.StringFixed(2),
	})
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
