package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion kinds.  PRODUCT promotions discount shop products;
// RESERVATION promotions discount the play-time price of bookings.
const (
	PromotionProduct     = "PRODUCT"
	PromotionReservation = "RESERVATION"
)

// Promotion is a time-bounded discount rule stored in the
// `promotions` table.  A promotion applies only while active and
// inside its validity window; both window ends are inclusive.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name of the campaign.
//  Active       – manual on/off switch, independent of the window.
//  DiscountRate – fraction of the price removed, in [0, 1].
//  DateStart    – first instant the promotion is valid (inclusive).
//  DateEnd      – last instant the promotion is valid (inclusive);
//                 never before DateStart.
//  Kind         – PromotionProduct or PromotionReservation.
//  ProductIDs   – products covered by a PRODUCT promotion, loaded
//                 from the promotions_products join table.  Empty for
//                 RESERVATION promotions.
//  CreatedAt    – timestamp of creation.
type Promotion struct {
	ID           uint64          // promotions.id
	Name         string          // promotions.name
	Active       bool            // promotions.active
	DiscountRate decimal.Decimal // promotions.discount_rate
	DateStart    time.Time       // promotions.date_start
	DateEnd      time.Time       // promotions.date_end
	Kind         string          // promotions.kind
	ProductIDs   []uint64        // promotions_products.product_id (eagerly loaded)
	CreatedAt    time.Time       // promotions.created_at
}

// Product represents a shop item (snacks, drinks, peripherals) stored
// in the `products` table.  While a product promotion is applied the
// undiscounted price is snapshotted in OriginalPrice so that removing
// the promotion can restore it exactly.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name of the product.
//  Price         – current selling price, possibly discounted.
//  OriginalPrice – pre-discount price; set only while a promotion
//                  discount is currently applied.
//  Stock         – units in stock.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Product struct {
	ID            uint64           // products.id
	Name          string           // products.name
	Price         decimal.Decimal  // products.price
	OriginalPrice *decimal.Decimal // products.original_price (nullable)
	Stock         uint32           // products.stock
	CreatedAt     time.Time        // products.created_at
	UpdatedAt     time.Time        // products.updated_at
}
