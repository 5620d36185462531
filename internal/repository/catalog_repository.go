package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// CatalogRepo provides access to products, promotions and the
// promotions_products join table.  Promotion precedence needs a
// product's full promotion set in memory, so associations are always
// loaded eagerly.
type CatalogRepo struct {
	ex executor
}

// NewCatalogRepo returns a CatalogRepo bound to the database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{ex: db} }

// ProductByID loads one product.
func (r *CatalogRepo) ProductByID(ctx context.Context, id uint64) (*model.Product, error) {
	var (
		p        model.Product
		original decimal.NullDecimal
	)
	err := r.ex.QueryRowContext(ctx,
		`SELECT id, name, price, original_price, stock, created_at, updated_at
		 FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Price, &original, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if original.Valid {
		v := original.Decimal
		p.OriginalPrice = &v
	}
	return &p, nil
}

const promotionColumns = `id, name, active, discount_rate, date_start, date_end, kind, created_at`

func scanPromotion(row interface{ Scan(...any) error }) (*model.Promotion, error) {
	var p model.Promotion
	err := row.Scan(&p.ID, &p.Name, &p.Active, &p.DiscountRate, &p.DateStart, &p.DateEnd,
		&p.Kind, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PromotionByID loads one promotion with its associated product IDs.
func (r *CatalogRepo) PromotionByID(ctx context.Context, id uint64) (*model.Promotion, error) {
	row := r.ex.QueryRowContext(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE id = ?`, id)
	p, err := scanPromotion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrPromotionNotFound
	}
	if err != nil {
		return nil, err
	}
	ids, err := r.productIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.ProductIDs = ids
	return p, nil
}

// ListPromotions returns every promotion ordered by start date,
// newest first.
func (r *CatalogRepo) ListPromotions(ctx context.Context) ([]model.Promotion, error) {
	rows, err := r.ex.QueryContext(ctx,
		`SELECT `+promotionColumns+` FROM promotions ORDER BY date_start DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	promos := make([]model.Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}
	return promos, rows.Err()
}

// PromotionsForProduct returns every promotion linked to the product.
func (r *CatalogRepo) PromotionsForProduct(ctx context.Context, productID uint64) ([]model.Promotion, error) {
	rows, err := r.ex.QueryContext(ctx,
		`SELECT p.id, p.name, p.active, p.discount_rate, p.date_start, p.date_end, p.kind, p.created_at
		 FROM promotions p
		 JOIN promotions_products pp ON pp.promotion_id = p.id
		 WHERE pp.product_id = ?
		 ORDER BY p.id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	promos := make([]model.Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}
	return promos, rows.Err()
}

// LinkPromotionProduct associates a promotion with a product.  The
// insert is idempotent: re-linking an existing pair is a no-op.
func (r *CatalogRepo) LinkPromotionProduct(ctx context.Context, promotionID, productID uint64) error {
	_, err := r.ex.ExecContext(ctx,
		`INSERT IGNORE INTO promotions_products (promotion_id, product_id) VALUES (?, ?)`,
		promotionID, productID)
	return err
}

// UnlinkPromotionProduct removes the association.  Removing a pair
// that was never linked is a no-op.
func (r *CatalogRepo) UnlinkPromotionProduct(ctx context.Context, promotionID, productID uint64) error {
	_, err := r.ex.ExecContext(ctx,
		`DELETE FROM promotions_products WHERE promotion_id = ? AND product_id = ?`,
		promotionID, productID)
	return err
}

// SaveProductPrice persists the product's live and snapshotted price.
func (r *CatalogRepo) SaveProductPrice(ctx context.Context, p *model.Product) error {
	var original any
	if p.OriginalPrice != nil {
		original = *p.OriginalPrice
	}
	_, err := r.ex.ExecContext(ctx,
		`UPDATE products SET price = ?, original_price = ? WHERE id = ?`,
		p.Price, original, p.ID)
	return err
}

func (r *CatalogRepo) productIDs(ctx context.Context, promotionID uint64) ([]uint64, error) {
	rows, err := r.ex.QueryContext(ctx,
		`SELECT product_id FROM promotions_products WHERE promotion_id = ? ORDER BY product_id`,
		promotionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
