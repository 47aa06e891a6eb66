package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodPayPal PaymentMethod = "PayPal"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingNextDay  ShippingMethod = "next_day"
)

// Order lifecycle labels. Admins may overwrite status with any label.
const (
	OrderStatusPending = "Pending"
	OrderStatusPlaced  = "Placed"
)

type Product struct {
	ID       string          `gorm:"primaryKey;size:64;not null" json:"id"`
	Name     string          `gorm:"size:255;not null" json:"name"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	WeightKg decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"weight"`
	Stock    int             `gorm:"not null;default:0" json:"stock"`
	Images   []string        `gorm:"serializer:json" json:"image"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type User struct {
	ID       string `gorm:"primaryKey;size:64;not null" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CartData string `gorm:"type:text;not null;default:'{}'" json:"cartData"` // raw cart JSON owned by the cart service

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Address struct {
	FirstName string `gorm:"size:128" json:"firstName,omitempty"`
	LastName  string `gorm:"size:128" json:"lastName,omitempty"`
	Street    string `gorm:"size:255" json:"street"`
	City      string `gorm:"size:128" json:"city"`
	State     string `gorm:"size:128" json:"state"`
	Country   string `gorm:"size:128" json:"country"`
	Zipcode   string `gorm:"size:32" json:"zipcode"`
}

type Order struct {
	ID     string      `gorm:"primaryKey;size:64;not null" json:"id"`
	UserID string      `gorm:"size:64;index;not null" json:"userId"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	BaseAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"baseAmount"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingCost"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`

	Address        Address        `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	ShippingMethod ShippingMethod `gorm:"size:16;not null;default:standard" json:"shippingMethod"`
	Country        string         `gorm:"size:128;not null" json:"country"`

	PaymentMethod     PaymentMethod `gorm:"size:16;index;not null" json:"paymentMethod"`
	Payment           bool          `gorm:"index;not null;default:false" json:"payment"`
	ExternalPaymentID *string       `gorm:"size:64;uniqueIndex" json:"externalPaymentId"` // paypal order id
	Status            string        `gorm:"size:32;index;not null" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem snapshots the product as it was when the order was placed.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   string          `gorm:"size:64;index;not null" json:"-"`
	ProductID string          `gorm:"size:64;index;not null" json:"productId"`
	Size      string          `gorm:"size:32" json:"size,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Name      string          `gorm:"size:255" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image     string          `gorm:"size:512" json:"image,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type PaymentCapture struct {
	CaptureID       string    `gorm:"primaryKey;size:64;not null" json:"captureId"`
	ExternalOrderID string    `gorm:"size:64;index;not null" json:"externalOrderId"` // paypal order id
	Status          string    `gorm:"size:32;not null" json:"status"`
	Amount          string    `gorm:"size:32" json:"amount"`
	Currency        string    `gorm:"size:8" json:"currency"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AncillaryFailure records a post-commit step that failed, for out-of-band recovery.
type AncillaryFailure struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   string    `gorm:"size:64;index;not null" json:"orderId"`
	Step      string    `gorm:"size:32;index;not null" json:"step"`
	Error     string    `gorm:"type:text;not null" json:"error"`
	CreatedAt time.Time `json:"createdAt"`
}
