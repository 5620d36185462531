package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

func promo(id uint64, kind, rate string, start, end time.Time) model.Promotion {
	return model.Promotion{
		ID:           id,
		Name:         "promo",
		Active:       true,
		DiscountRate: decimal.RequireFromString(rate),
		DateStart:    start,
		DateEnd:      end,
		Kind:         kind,
	}
}

func TestPromotionValid(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	p := promo(1, model.PromotionProduct, "0.10", start, end)

	assert.True(t, PromotionValid(&p, start), "start date is inclusive")
	assert.True(t, PromotionValid(&p, end), "end date is inclusive")
	assert.True(t, PromotionValid(&p, start.AddDate(0, 0, 10)))
	assert.False(t, PromotionValid(&p, start.Add(-time.Second)))
	assert.False(t, PromotionValid(&p, end.Add(time.Second)))

	p.Active = false
	assert.False(t, PromotionValid(&p, start.AddDate(0, 0, 10)), "inactive promotions never apply")

	assert.False(t, PromotionValid(nil, start))
}

func TestBestPromotion(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -5)
	end := now.AddDate(0, 0, 5)

	t.Run("highest rate wins", func(t *testing.T) {
		best := BestPromotion([]model.Promotion{
			promo(1, model.PromotionProduct, "0.10", start, end),
			promo(2, model.PromotionProduct, "0.25", start, end),
			promo(3, model.PromotionProduct, "0.15", start, end),
		}, now)
		require.NotNil(t, best)
		assert.Equal(t, uint64(2), best.ID)
	})

	t.Run("rate tie breaks on lowest id", func(t *testing.T) {
		best := BestPromotion([]model.Promotion{
			promo(9, model.PromotionProduct, "0.20", start, end),
			promo(4, model.PromotionProduct, "0.20", start, end),
			promo(7, model.PromotionProduct, "0.20", start, end),
		}, now)
		require.NotNil(t, best)
		assert.Equal(t, uint64(4), best.ID)
	})

	t.Run("invalid and reservation-kind candidates are skipped", func(t *testing.T) {
		expired := promo(1, model.PromotionProduct, "0.90", start.AddDate(0, -2, 0), start.AddDate(0, -1, 0))
		wrongKind := promo(2, model.PromotionReservation, "0.80", start, end)
		ok := promo(3, model.PromotionProduct, "0.10", start, end)
		best := BestPromotion([]model.Promotion{expired, wrongKind, ok}, now)
		require.NotNil(t, best)
		assert.Equal(t, uint64(3), best.ID)
	})

	t.Run("no valid candidate", func(t *testing.T) {
		assert.Nil(t, BestPromotion(nil, now))
		assert.Nil(t, BestPromotion([]model.Promotion{
			promo(1, model.PromotionReservation, "0.50", start, end),
		}, now))
	})
}

func TestResolverApplyToProduct(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -5)
	end := now.AddDate(0, 0, 5)
	ctx := context.Background()

	mem := newMemStores()
	mem.products[1] = &model.Product{ID: 1, Name: "energy drink", Price: decimal.NewFromInt(100)}
	p10 := promo(1, model.PromotionProduct, "0.10", start, end)
	p25 := promo(2, model.PromotionProduct, "0.25", start, end)
	mem.promotions[1] = &p10
	mem.promotions[2] = &p25

	r := NewPromotionResolver(mem.view(), mem)

	got, err := r.ApplyToProduct(ctx, 1, 1, now)
	require.NoError(t, err)
	assert.Equal(t, "90.00", got.Price.StringFixed(2))
	require.NotNil(t, got.OriginalPrice)
	assert.Equal(t, "100.00", got.OriginalPrice.StringFixed(2))

	// A stronger promotion discounts from the snapshot, not from the
	// already-discounted price.
	got, err = r.ApplyToProduct(ctx, 2, 1, now)
	require.NoError(t, err)
	assert.Equal(t, "75.00", got.Price.StringFixed(2))

	// Re-applying the weaker one must not raise the price back.
	got, err = r.ApplyToProduct(ctx, 1, 1, now)
	require.NoError(t, err)
	assert.Equal(t, "75.00", got.Price.StringFixed(2))
}

func TestResolverApplyRejectsWrongKindAndWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	mem := newMemStores()
	mem.products[1] = &model.Product{ID: 1, Price: decimal.NewFromInt(100)}
	resKind := promo(1, model.PromotionReservation, "0.10", now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	expired := promo(2, model.PromotionProduct, "0.10", now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))
	mem.promotions[1] = &resKind
	mem.promotions[2] = &expired

	r := NewPromotionResolver(mem.view(), mem)

	_, err := r.ApplyToProduct(ctx, 1, 1, now)
	assert.ErrorIs(t, err, ErrPromotionKind)

	_, err = r.ApplyToProduct(ctx, 2, 1, now)
	assert.ErrorIs(t, err, ErrPromotionNotValid)

	_, err = r.ApplyToProduct(ctx, 99, 1, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolverRemoveFromProduct(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -5)
	end := now.AddDate(0, 0, 5)
	ctx := context.Background()

	mem := newMemStores()
	mem.products[1] = &model.Product{ID: 1, Price: decimal.NewFromInt(100)}
	p10 := promo(1, model.PromotionProduct, "0.10", start, end)
	p25 := promo(2, model.PromotionProduct, "0.25", start, end)
	mem.promotions[1] = &p10
	mem.promotions[2] = &p25

	r := NewPromotionResolver(mem.view(), mem)
	_, err := r.ApplyToProduct(ctx, 1, 1, now)
	require.NoError(t, err)
	_, err = r.ApplyToProduct(ctx, 2, 1, now)
	require.NoError(t, err)

	// Dropping the stronger promotion falls back to the weaker one.
	got, err := r.RemoveFromProduct(ctx, 2, 1, now)
	require.NoError(t, err)
	assert.Equal(t, "90.00", got.Price.StringFixed(2))
	require.NotNil(t, got.OriginalPrice)

	// Dropping the last promotion restores the original price and
	// clears the snapshot.
	got, err = r.RemoveFromProduct(ctx, 1, 1, now)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Price.StringFixed(2))
	assert.Nil(t, got.OriginalPrice)
}

func TestResolverRemoveWithoutSnapshotIsNoop(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	mem := newMemStores()
	mem.products[1] = &model.Product{ID: 1, Price: decimal.NewFromInt(100)}
	p10 := promo(1, model.PromotionProduct, "0.10", now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	mem.promotions[1] = &p10

	r := NewPromotionResolver(mem.view(), mem)
	got, err := r.RemoveFromProduct(ctx, 1, 1, now)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Price.StringFixed(2))
}
