package engine

import (
	"context"
	"time"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

// PromotionValid reports whether the promotion applies at the given
// instant: it must be switched on and the instant must fall inside
// the [DateStart, DateEnd] window, both ends inclusive.
//
// RESERVATION-kind promotions are judged against the reservation's
// own reservation date, fixed at booking time; PRODUCT-kind
// promotions are judged against the current date.  Callers pick the
// reference instant accordingly.
func PromotionValid(p *model.Promotion, at time.Time) bool {
	if p == nil || !p.Active {
		return false
	}
	return !at.Before(p.DateStart) && !at.After(p.DateEnd)
}

// PromotionResolver applies and removes product promotions and keeps
// product prices consistent with the precedence rule: when several
// valid promotions cover one product, only the single highest
// discount rate determines the live price.  Rate ties are broken by
// the lowest promotion ID, which keeps the outcome deterministic
// regardless of load order.
type PromotionResolver struct {
	stores Stores
	atomic Atomic
}

// NewPromotionResolver returns a resolver writing through the given
// stores.
func NewPromotionResolver(stores Stores, atomic Atomic) *PromotionResolver {
	return &PromotionResolver{stores: stores, atomic: atomic}
}

// BestPromotion picks the winning promotion among candidates at the
// given instant: valid ones only, highest DiscountRate first, lowest
// ID on ties.  It returns nil when no candidate is valid.
func BestPromotion(candidates []model.Promotion, at time.Time) *model.Promotion {
	var best *model.Promotion
	for i := range candidates {
		p := &candidates[i]
		if p.Kind != model.PromotionProduct || !PromotionValid(p, at) {
			continue
		}
		if best == nil {
			best = p
			continue
		}
		switch p.DiscountRate.Cmp(best.DiscountRate) {
		case 1:
			best = p
		case 0:
			if p.ID < best.ID {
				best = p
			}
		}
	}
	return best
}

// ApplyToProduct links the promotion to the product and discounts the
// product price.  The undiscounted price is snapshotted into
// OriginalPrice the first time any promotion touches the product; the
// live price is then recomputed from that snapshot using the best
// valid promotion covering the product, so applying a weaker
// promotion on top of a stronger one never raises the price.
func (r *PromotionResolver) ApplyToProduct(ctx context.Context, promotionID, productID uint64, now time.Time) (*model.Product, error) {
	var out *model.Product
	err := r.atomic.InTx(ctx, func(s Stores) error {
		promo, err := s.Catalog.PromotionByID(ctx, promotionID)
		if err != nil {
			return err
		}
		if promo.Kind != model.PromotionProduct {
			return ErrPromotionKind
		}
		if !PromotionValid(promo, now) {
			return ErrPromotionNotValid
		}
		product, err := s.Catalog.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.Catalog.LinkPromotionProduct(ctx, promotionID, productID); err != nil {
			return err
		}
		if product.OriginalPrice == nil {
			snapshot := product.Price
			product.OriginalPrice = &snapshot
		}
		promos, err := s.Catalog.PromotionsForProduct(ctx, productID)
		if err != nil {
			return err
		}
		promos = append(promos, *promo)
		best := BestPromotion(promos, now)
		product.Price = ApplyDiscount(*product.OriginalPrice, best.DiscountRate)
		if err := s.Catalog.SaveProductPrice(ctx, product); err != nil {
			return err
		}
		out = product
		return nil
	})
	return out, err
}

// RemoveFromProduct unlinks the promotion from the product and
// recomputes the price from the remaining valid promotions.  When
// none remain, the snapshotted original price is restored and the
// snapshot cleared; otherwise the best remaining promotion is
// re-applied from the snapshot.
func (r *PromotionResolver) RemoveFromProduct(ctx context.Context, promotionID, productID uint64, now time.Time) (*model.Product, error) {
	var out *model.Product
	err := r.atomic.InTx(ctx, func(s Stores) error {
		if _, err := s.Catalog.PromotionByID(ctx, promotionID); err != nil {
			return err
		}
		product, err := s.Catalog.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.Catalog.UnlinkPromotionProduct(ctx, promotionID, productID); err != nil {
			return err
		}
		if product.OriginalPrice == nil {
			// No discount was ever applied; nothing to restore.
			out = product
			return nil
		}
		remaining, err := s.Catalog.PromotionsForProduct(ctx, productID)
		if err != nil {
			return err
		}
		filtered := remaining[:0]
		for _, p := range remaining {
			if p.ID != promotionID {
				filtered = append(filtered, p)
			}
		}
		if best := BestPromotion(filtered, now); best != nil {
			product.Price = ApplyDiscount(*product.OriginalPrice, best.DiscountRate)
		} else {
			product.Price = *product.OriginalPrice
			product.OriginalPrice = nil
		}
		if err := s.Catalog.SaveProductPrice(ctx, product); err != nil {
			return err
		}
		out = product
		return nil
	})
	return out, err
}
