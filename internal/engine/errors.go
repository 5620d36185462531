// Package engine implements the session/reservation lifecycle and the
// pricing and promotion rules of the gaming room.  It is a plain
// in-process library: persistence, transport and rendering are
// collaborators hidden behind the interfaces in store.go.
package engine

import (
	"errors"
	"fmt"
)

// Error categories.  Every failure returned by the engine wraps
// exactly one of these sentinels so that callers can classify it with
// errors.Is and translate it into an operator-facing message.  The
// engine never signals business-rule violations by panicking.
var (
	// ErrValidation marks malformed input: durations under the
	// 15-minute grid, an empty payment mode, a non-positive
	// remaining time, a promotion outside its validity window.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks admission-control failures: the target post
	// already hosts an active session, or the client already plays
	// elsewhere.
	ErrConflict = errors.New("resource conflict")

	// ErrNotFound marks a missing session, reservation, post, game,
	// client, product or promotion.
	ErrNotFound = errors.New("not found")

	// ErrState marks a transition attempted from an incompatible
	// state, such as pausing a session that is not active.
	ErrState = errors.New("invalid state")
)

// Specific failures.  Each wraps its category so both
// errors.Is(err, ErrPostOccupied) and errors.Is(err, ErrConflict) hold.
var (
	ErrDurationTooShort     = fmt.Errorf("%w: duration must be at least 15 minutes", ErrValidation)
	ErrPaymentModeRequired  = fmt.Errorf("%w: payment mode is required", ErrValidation)
	ErrInvalidRemainingTime = fmt.Errorf("%w: remaining time must be positive", ErrValidation)
	ErrPostOutOfService     = fmt.Errorf("%w: post is out of service", ErrValidation)
	ErrGameNotOnPost        = fmt.Errorf("%w: game is not installed on the post", ErrValidation)
	ErrPromotionNotValid    = fmt.Errorf("%w: promotion is not valid today", ErrValidation)
	ErrPromotionKind        = fmt.Errorf("%w: promotion kind does not apply here", ErrValidation)

	ErrPostOccupied           = fmt.Errorf("%w: post already hosts an active session", ErrConflict)
	ErrClientHasActiveSession = fmt.Errorf("%w: client already has an active session", ErrConflict)

	ErrSessionNotActive = fmt.Errorf("%w: session is not active", ErrState)
	ErrSessionNotPaused = fmt.Errorf("%w: session is not paused", ErrState)
	ErrSessionCompleted = fmt.Errorf("%w: session is already completed", ErrState)

	ErrSessionNotFound     = fmt.Errorf("%w: session", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("%w: reservation", ErrNotFound)
	ErrPostNotFound        = fmt.Errorf("%w: post", ErrNotFound)
	ErrGameNotFound        = fmt.Errorf("%w: game", ErrNotFound)
	ErrClientNotFound      = fmt.Errorf("%w: client", ErrNotFound)
	ErrProductNotFound     = fmt.Errorf("%w: product", ErrNotFound)
	ErrPromotionNotFound   = fmt.Errorf("%w: promotion", ErrNotFound)
	ErrReferrerNotFound    = fmt.Errorf("%w: referrer", ErrNotFound)
	ErrNoPausedSession     = fmt.Errorf("%w: no paused session for client", ErrNotFound)
)
