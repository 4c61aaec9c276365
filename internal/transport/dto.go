package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Weight      decimal.Decimal `json:"weight"`
	Height      decimal.Decimal `json:"height"`
	Width       decimal.Decimal `json:"width"`
	Length      decimal.Decimal `json:"length"`
}

// PatchProductRequest changes only the fields that are present.
type PatchProductRequest struct {
	SKU           *string          `json:"sku"`
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	Price         *decimal.Decimal `json:"price"`
	Stock         *int             `json:"stock"`
	Weight        *decimal.Decimal `json:"weight"`
	Height        *decimal.Decimal `json:"height"`
	Width         *decimal.Decimal `json:"width"`
	Length        *decimal.Decimal `json:"length"`
}

// ProductFilter narrows the catalog listing. Q matches name or description,
// case-insensitively.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Q          string
}

// CategoryRequest is used for both create and full update.
type CategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type CreateCouponRequest struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	IsActive        *bool           `json:"is_active"`
}

type PatchCouponRequest struct {
	Code            *string          `json:"code"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	ExpiresAt       *time.Time       `json:"expires_at"`
	ClearExpiry     bool             `json:"clear_expiry"`
	IsActive        *bool            `json:"is_active"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ShippingRequest struct {
	PostalCode string `json:"postal_code"`
}

type CheckoutSessionResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPage[T any](data []T, page, offset, limit int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Meta: Meta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
			HasPrev:    page > 1,
			HasNext:    int64(offset+limit) < total,
		},
	}
}
