package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
	"github.com/iliyamo/game-room-reservation/internal/repository"
)

// PromotionHandler manages product promotions. Applying and removing
// go through the resolver so the displayed price always reflects the
// best currently valid promotion.
type PromotionHandler struct {
	Resolver *engine.PromotionResolver
	Store    *repository.Store
}

func NewPromotionHandler(r *engine.PromotionResolver, store *repository.Store) *PromotionHandler {
	return &PromotionHandler{Resolver: r, Store: store}
}

type promotionResp struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Active       bool      `json:"active"`
	DiscountRate string    `json:"discount_rate"`
	DateStart    time.Time `json:"date_start"`
	DateEnd      time.Time `json:"date_end"`
	Kind         string    `json:"kind"`
	ProductIDs   []uint64  `json:"product_ids,omitempty"`
}

type productResp struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Price         string  `json:"price"`
	OriginalPrice *string `json:"original_price,omitempty"`
	Stock         uint32  `json:"stock"`
}

func toPromotionResp(p model.Promotion) promotionResp {
	return promotionResp{
		ID:           p.ID,
		Name:         p.Name,
		Active:       p.Active,
		DiscountRate: p.DiscountRate.String(),
		DateStart:    p.DateStart,
		DateEnd:      p.DateEnd,
		Kind:         p.Kind,
		ProductIDs:   p.ProductIDs,
	}
}

func toProductResp(p *model.Product) productResp {
	r := productResp{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.StringFixed(2),
		Stock: p.Stock,
	}
	if p.OriginalPrice != nil {
		s := p.OriginalPrice.StringFixed(2)
		r.OriginalPrice = &s
	}
	return r
}

// List returns every promotion, newest first.
func (h *PromotionHandler) List(c echo.Context) error {
	promos, err := h.Store.Catalog.ListPromotions(c.Request().Context())
	if err != nil {
		return writeEngineError(c, err)
	}
	out := make([]promotionResp, 0, len(promos))
	for _, p := range promos {
		out = append(out, toPromotionResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"promotions": out})
}

// Apply links a promotion to a product and reprices it.
func (h *PromotionHandler) Apply(c echo.Context) error {
	promotionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion id"})
	}
	productID, err := pathID(c, "productID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Resolver.ApplyToProduct(c.Request().Context(), promotionID, productID, time.Now().UTC())
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}

// Remove unlinks a promotion from a product and reprices it from the
// remaining promotions, restoring the original price when none apply.
func (h *PromotionHandler) Remove(c echo.Context) error {
	promotionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion id"})
	}
	productID, err := pathID(c, "productID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Resolver.RemoveFromProduct(c.Request().Context(), promotionID, productID, time.Now().UTC())
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}

// Product returns one product with its current and original price.
func (h *PromotionHandler) Product(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Store.View().Catalog.ProductByID(c.Request().Context(), id)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}
