package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CustomOrderType tags cart items that need a non-standard fulfillment path.
type CustomOrderType string

const (
	CustomOrderNone       CustomOrderType = ""
	CustomOrderAliexpress CustomOrderType = "aliexpress"
	CustomOrderGiftCard   CustomOrderType = "giftCard"
	CustomOrderMobileData CustomOrderType = "mobileData"
)

// CartItemMetadata carries type-specific fields for tagged items.
type CartItemMetadata struct {
	CustomOrderType CustomOrderType   `json:"customOrderType,omitempty"`
	PhoneNumber     string            `json:"phoneNumber,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

type CartItem struct {
	ProductID      string            `json:"productId"`
	VariantID      string            `json:"variantId"`
	Quantity       int               `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unitPrice"`
	NameKey        string            `json:"nameKey"`
	VariantNameKey string            `json:"variantNameKey,omitempty"`
	LogoURL        string            `json:"logoUrl,omitempty"`
	Metadata       *CartItemMetadata `json:"metadata,omitempty"`
}

// OrderType returns the item's custom order tag, or CustomOrderNone.
func (i CartItem) OrderType() CustomOrderType {
	if i.Metadata == nil {
		return CustomOrderNone
	}
	return i.Metadata.CustomOrderType
}

// LineTotal is unitPrice * quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

var (
	// ErrEmptyCart is returned when a snapshot is built from no items.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	// ErrInvalidCartItem wraps line items that break the snapshot invariants.
	ErrInvalidCartItem = errors.New("invalid cart item")
)

// CartSnapshot is the read-only list of items handed to checkout.
// The zero value is an empty snapshot.
type CartSnapshot struct {
	items []CartItem
}

// NewCartSnapshot copies items into a snapshot after checking the line item invariants.
func NewCartSnapshot(items []CartItem) (CartSnapshot, error) {
	if len(items) == 0 {
		return CartSnapshot{}, ErrEmptyCart
	}
	copied := make([]CartItem, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return CartSnapshot{}, fmt.Errorf("%w: item %d (%s) quantity must be positive", ErrInvalidCartItem, i, item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return CartSnapshot{}, fmt.Errorf("%w: item %d (%s) unit price must not be negative", ErrInvalidCartItem, i, item.ProductID)
		}
		copied[i] = copyItem(item)
	}
	return CartSnapshot{items: copied}, nil
}

// Items returns a copy of the snapshot's items in cart order.
func (s CartSnapshot) Items() []CartItem {
	out := make([]CartItem, len(s.items))
	for i, item := range s.items {
		out[i] = copyItem(item)
	}
	return out
}

func (s CartSnapshot) Len() int {
	return len(s.items)
}

// HasCustomOrderType reports whether any item carries the given tag.
func (s CartSnapshot) HasCustomOrderType(t CustomOrderType) bool {
	for _, item := range s.items {
		if item.OrderType() == t {
			return true
		}
	}
	return false
}

// Total sums unitPrice * quantity over all items.
func (s CartSnapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func copyItem(item CartItem) CartItem {
	if item.Metadata == nil {
		return item
	}
	meta := *item.Metadata
	if item.Metadata.Extra != nil {
		meta.Extra = make(map[string]string, len(item.Metadata.Extra))
		for k, v := range item.Metadata.Extra {
			meta.Extra[k] = v
		}
	}
	item.Metadata = &meta
	return item
}
