package order

import (
	"strings"
	"time"

	"storefront-checkout/internal/domain"

	"github.com/google/uuid"
)

// Input is the part of a checkout draft the assembler needs.
type Input struct {
	BuyerName     string
	BuyerEmail    string
	PaymentMethod domain.PaymentMethodID
	Shipping      *domain.ShippingDetails
	Currency      string
}

// Assembler turns a confirmed checkout into an Order.
type Assembler struct {
	newID func() string
	now   func() time.Time
}

// NewAssembler creates an Assembler issuing UUIDv4 ids and UTC timestamps.
func NewAssembler() *Assembler {
	return &Assembler{
		newID: func() string { return uuid.NewString() },
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Assemble builds the order. Total and status depend only on the inputs.
func (a *Assembler) Assemble(in Input, snapshot domain.CartSnapshot) domain.Order {
	var shipping *domain.ShippingDetails
	if in.Shipping != nil && snapshot.HasCustomOrderType(domain.CustomOrderAliexpress) {
		s := *in.Shipping
		shipping = &s
	}
	return domain.Order{
		ID:              a.newID(),
		Items:           snapshot.Items(),
		Total:           snapshot.Total(),
		Currency:        in.Currency,
		CustomerName:    strings.TrimSpace(in.BuyerName),
		CustomerEmail:   strings.TrimSpace(in.BuyerEmail),
		PaymentMethod:   in.PaymentMethod,
		Status:          StatusFor(in.PaymentMethod),
		ShippingDetails: shipping,
		Date:            a.now(),
	}
}

// StatusFor maps the payment method to the initial order status.
func StatusFor(method domain.PaymentMethodID) domain.OrderStatus {
	switch method {
	case domain.PaymentBankTransfer, domain.PaymentAliexpressRequest:
		return domain.OrderStatusAwaitingPayment
	default:
		return domain.OrderStatusPaid
	}
}
