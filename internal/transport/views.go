package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

type OrderItemView struct {
	ProductID       *uuid.UUID `json:"product_id"`
	ProductName     string     `json:"product_name"`
	Quantity        int        `json:"quantity"`
	PriceAtPurchase string     `json:"price_at_purchase"`
}

type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	TotalPrice      string          `json:"total_price"`
	DiscountAmount  string          `json:"discount_amount"`
	CouponCodeUsed  *string         `json:"coupon_code_used"`
	Status          string          `json:"status"`
	PaymentIntentID *string         `json:"payment_intent_id,omitempty"`
	Items           []OrderItemView `json:"items"`
}

func NewOrderView(o *models.Order) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemView{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			PriceAtPurchase: money(it.PriceAtPurchase),
		})
	}
	return OrderView{
		ID:              o.ID,
		UserID:          o.UserID,
		CreatedAt:       o.CreatedAt,
		TotalPrice:      money(o.TotalPrice),
		DiscountAmount:  money(o.DiscountAmount),
		CouponCodeUsed:  o.CouponCodeUsed,
		Status:          o.Status,
		PaymentIntentID: o.PaymentIntentID,
		Items:           items,
	}
}

func NewOrderViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderView(&orders[i]))
	}
	return out
}

type CartItemView struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Stock     int       `json:"stock"`
	LineTotal string    `json:"line_total"`
}

type CouponView struct {
	Code            string `json:"code"`
	DiscountPercent string `json:"discount_percent"`
}

type CartView struct {
	ID       uuid.UUID      `json:"id"`
	Items    []CartItemView `json:"items"`
	Coupon   *CouponView    `json:"coupon"`
	Subtotal string         `json:"subtotal"`
	Discount string         `json:"discount"`
	Total    string         `json:"total"`
}

type ShippingOptionView struct {
	Name         string `json:"name"`
	Price        string `json:"price"`
	DeliveryTime int    `json:"delivery_time"`
	Carrier      string `json:"carrier"`
}
