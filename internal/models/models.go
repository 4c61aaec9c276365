package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	SKU         string          `gorm:"size:64;uniqueIndex;not null"  json:"sku"`
	Name        string          `gorm:"size:255;not null"             json:"name"`
	Description string          `gorm:"type:text"                     json:"description"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"               json:"category_id"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
	Stock       int             `gorm:"not null;check:stock >= 0"     json:"stock"`
	Weight      decimal.Decimal `gorm:"type:numeric(10,3);not null"   json:"weight"`
	Height      decimal.Decimal `gorm:"type:numeric(10,2);not null"   json:"height"`
	Width       decimal.Decimal `gorm:"type:numeric(10,2);not null"   json:"width"`
	Length      decimal.Decimal `gorm:"type:numeric(10,2);not null"   json:"length"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	Title       string    `gorm:"size:120;index;not null"   json:"title"`
	Description string    `gorm:"type:text"                 json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Coupon struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	Code            string          `gorm:"size:20;uniqueIndex;not null"  json:"code"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"    json:"discount_percent"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	IsActive        bool            `gorm:"not null"                      json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ValidAt reports whether the coupon may be used at the given instant.
func (c *Coupon) ValidAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.After(now)
}

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"         json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CouponID  *uuid.UUID `gorm:"type:uuid;index"              json:"coupon_id"`
	Coupon    *Coupon    `gorm:"foreignKey:CouponID"          json:"coupon,omitempty"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                             json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID"                             json:"product"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                      json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"      json:"user_id"`
	CreatedAt       time.Time       `gorm:"index"                         json:"created_at"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"total_price"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"discount_amount"`
	CouponCodeUsed  *string         `gorm:"size:20"                       json:"coupon_code_used"`
	Status          string          `gorm:"size:32;index;not null"        json:"status"`
	PaymentIntentID *string         `gorm:"size:255;uniqueIndex"          json:"payment_intent_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem keeps a nullable product reference: products can be deleted
// after the order is placed. Name and price are frozen at checkout.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;index;not null"    json:"order_id"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;index"             json:"product_id"`
	ProductName     string          `gorm:"size:255;not null"           json:"product_name"`
	Quantity        int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_at_purchase"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type ProductReview struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                             json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product;not null" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product;not null" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"      json:"rating"`
	Comment   string    `gorm:"type:text"                                        json:"comment"`
	CreatedAt time.Time `gorm:"index"                                            json:"created_at"`
}

func (ProductReview) TableName() string {
	return "product_reviews"
}

// OutboxEvent is written in the same transaction as the state change it
// describes and published later by the relay.
type OutboxEvent struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	EventID   uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	Topic     string     `gorm:"size:128;not null"`
	Key       string     `gorm:"size:128;not null"`
	Type      string     `gorm:"size:64;not null"`
	Payload   []byte     `gorm:"not null"`
	CreatedAt time.Time  `gorm:"not null"`
	SentAt    *time.Time `gorm:"index"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

func All() []any {
	return []any{
		&Category{},
		&Product{},
		&Coupon{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&ProductReview{},
		&OutboxEvent{},
	}
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Category) BeforeCreate(tx *gorm.DB) error      { newID(&c.ID); return nil }
func (p *Product) BeforeCreate(tx *gorm.DB) error       { newID(&p.ID); return nil }
func (c *Coupon) BeforeCreate(tx *gorm.DB) error        { newID(&c.ID); return nil }
func (c *Cart) BeforeCreate(tx *gorm.DB) error          { newID(&c.ID); return nil }
func (c *CartItem) BeforeCreate(tx *gorm.DB) error      { newID(&c.ID); return nil }
func (o *Order) BeforeCreate(tx *gorm.DB) error         { newID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(tx *gorm.DB) error     { newID(&o.ID); return nil }
func (r *ProductReview) BeforeCreate(tx *gorm.DB) error { newID(&r.ID); return nil }

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	newID(&e.EventID)
	return nil
}
