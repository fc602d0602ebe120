package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// shipped/delivered/refunded объявлены для полноты модели: их выставляет
// внешний инструментарий фулфилмента, сервис сам эти статусы не назначает.

// OrderItem позиция в заказе. Список позиций неизменяем после создания заказа.
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Size      string          `json:"size,omitempty"`
}

// ShippingAddress адрес доставки
type ShippingAddress struct {
	Line1      string `json:"line1,omitempty" gorm:"size:255"`
	Line2      string `json:"line2,omitempty" gorm:"size:255"`
	City       string `json:"city,omitempty" gorm:"size:100"`
	PostalCode string `json:"postal_code,omitempty" gorm:"size:20"`
	Country    string `json:"country,omitempty" gorm:"size:100"`
}

// Order сущность заказа. StripeSessionID nullable: NULL у заказов без
// платёжной сессии, иначе уникальный индекс ловил бы пустые строки.
type Order struct {
	ID                    int64           `json:"order_id" gorm:"primaryKey;autoIncrement"`
	StripeSessionID       *string         `json:"stripe_session_id,omitempty" gorm:"size:255;uniqueIndex"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id,omitempty" gorm:"size:255"`
	CustomerEmail         string          `json:"customer_email" gorm:"size:255;not null"`
	CustomerName          string          `json:"customer_name,omitempty" gorm:"size:255"`
	CustomerPhone         string          `json:"customer_phone,omitempty" gorm:"size:50"`
	Shipping              ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	Items                 []OrderItem     `json:"items" gorm:"serializer:json;type:jsonb"`
	TotalAmount           decimal.Decimal `json:"total_amount" gorm:"type:numeric(10,2)"`
	Currency              string          `json:"currency" gorm:"size:3"`
	Status                OrderStatus     `json:"status" gorm:"size:20"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	PaidAt                *time.Time      `json:"paid_at,omitempty"`
}

func (Order) TableName() string { return "orders" }
