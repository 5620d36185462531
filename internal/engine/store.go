package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

// This file declares the collaborator interfaces the engine consumes.
// The repository package implements them on MySQL; tests implement
// them with in-memory maps.  Lookup methods must return an error
// wrapping ErrNotFound when the record does not exist; the finder
// methods (ActiveByPost and friends) instead return (nil, nil) when
// nothing matches, because absence is their normal answer.

// SessionStore provides access to session records.
type SessionStore interface {
	SessionByID(ctx context.Context, id uint64) (*model.Session, error)
	ActiveByPost(ctx context.Context, postID uint64) (*model.Session, error)
	ActiveByClient(ctx context.Context, clientID uint64) (*model.Session, error)
	PausedByClient(ctx context.Context, clientID uint64) (*model.Session, error)
	CreateSession(ctx context.Context, s *model.Session) error
	SaveSession(ctx context.Context, s *model.Session) error
}

// ReservationStore provides access to reservation records.
type ReservationStore interface {
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	SaveReservation(ctx context.Context, r *model.Reservation) error
}

// ClientStore provides access to clients and their loyalty balance.
type ClientStore interface {
	ClientByID(ctx context.Context, id uint64) (*model.Client, error)
	AddLoyaltyPoints(ctx context.Context, clientID uint64, points uint32) error
}

// ReferrerStore resolves referral codes and credits referral points.
type ReferrerStore interface {
	ReferrerByCode(ctx context.Context, code string) (*model.Referrer, error)
	AddReferralPoints(ctx context.Context, referrerID uint64, points uint32) error
}

// PostStore provides read access to posts.
type PostStore interface {
	PostByID(ctx context.Context, id uint64) (*model.Post, error)
}

// GameStore provides read access to games.
type GameStore interface {
	GameByID(ctx context.Context, id uint64) (*model.Game, error)
}

// CatalogStore provides access to products, promotions and the links
// between them.  Promotion precedence needs the full association set
// in memory, hence the eager PromotionsForProduct.
type CatalogStore interface {
	ProductByID(ctx context.Context, id uint64) (*model.Product, error)
	PromotionByID(ctx context.Context, id uint64) (*model.Promotion, error)
	PromotionsForProduct(ctx context.Context, productID uint64) ([]model.Promotion, error)
	LinkPromotionProduct(ctx context.Context, promotionID, productID uint64) error
	UnlinkPromotionProduct(ctx context.Context, promotionID, productID uint64) error
	SaveProductPrice(ctx context.Context, p *model.Product) error
}

// PaymentStore records money taken for a ticket.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *model.Payment) error
}

// Stores groups all collaborators behind a single value so that an
// Atomic implementation can hand the engine a transaction-bound view.
type Stores struct {
	Sessions     SessionStore
	Reservations ReservationStore
	Clients      ClientStore
	Referrers    ReferrerStore
	Posts        PostStore
	Games        GameStore
	Catalog      CatalogStore
	Payments     PaymentStore
}

// Atomic executes fn so that every store write issued through the
// Stores view it receives commits together or not at all.  The MySQL
// implementation opens one transaction; in-memory test fakes run fn
// directly under a lock.
type Atomic interface {
	InTx(ctx context.Context, fn func(s Stores) error) error
}

// Receipt is the snapshot handed to the receipt-rendering collaborator
// after a booking or an extension has been committed.  Rendering and
// printing are fully outside the engine.
type Receipt struct {
	TicketNumber string
	ClientID     uint64
	PostID       uint64
	Minutes      int
	Amount       decimal.Decimal
	PaymentMode  string
	OperatorID   uint64
	IssuedAt     time.Time
	Kind         string // "BOOKING" or "EXTENSION"
}

// ReceiptPublisher delivers receipts to whatever renders them.
// Failures must be tolerable: the engine logs and moves on.
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, r Receipt) error
}
