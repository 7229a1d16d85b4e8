package domain

// PaymentMethodID is the stable key of a payment provider.
type PaymentMethodID string

const (
	PaymentCard          PaymentMethodID = "card"
	PaymentPayPal        PaymentMethodID = "paypal"
	PaymentStripeLike    PaymentMethodID = "stripeLike"
	PaymentCryptoPay     PaymentMethodID = "cryptoPay"
	PaymentBankTransfer  PaymentMethodID = "bankTransfer"
	PaymentOtherRedirect PaymentMethodID = "otherRedirect"

	// PaymentAliexpressRequest is recorded on marketplace-request orders; it is never selectable.
	PaymentAliexpressRequest PaymentMethodID = "aliexpress_request"
)

// CanonicalPaymentMethods lists the selectable ids in their canonical order.
var CanonicalPaymentMethods = []PaymentMethodID{
	PaymentCard,
	PaymentPayPal,
	PaymentStripeLike,
	PaymentCryptoPay,
	PaymentBankTransfer,
	PaymentOtherRedirect,
}

// IsRedirect reports whether completion is handed off to an external processor.
func (id PaymentMethodID) IsRedirect() bool {
	switch id {
	case PaymentPayPal, PaymentStripeLike, PaymentCryptoPay, PaymentOtherRedirect:
		return true
	default:
		return false
	}
}

type PaymentMethod struct {
	ID          PaymentMethodID `json:"id"`
	DisplayName string          `json:"displayName"`
	IconRef     string          `json:"iconRef"`
	Enabled     bool            `json:"enabled"`
}
