package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "AwaitingPayment"
	OrderStatusPaid            OrderStatus = "Paid"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Order is the finalized result of a checkout session.
type Order struct {
	ID              string           `json:"id"`
	Items           []CartItem       `json:"items"`
	Total           decimal.Decimal  `json:"total"`
	Currency        string           `json:"currency"`
	CustomerName    string           `json:"customerName"`
	CustomerEmail   string           `json:"customerEmail"`
	PaymentMethod   PaymentMethodID  `json:"paymentMethod"`
	Status          OrderStatus      `json:"status"`
	ShippingDetails *ShippingDetails `json:"shippingDetails,omitempty"`
	Date            time.Time        `json:"date"`
}
