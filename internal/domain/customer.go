package domain

// CurrentUser is the signed-in shopper, if any, used to prefill buyer identity.
type CurrentUser struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ShippingDetails stores the delivery fields collected for marketplace-request orders.
type ShippingDetails struct {
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
}

// CardDetails holds the card form fields. They never leave the session.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// Draft is the buyer-entered state of one checkout session.
type Draft struct {
	BuyerName      string           `json:"buyerName"`
	BuyerEmail     string           `json:"buyerEmail"`
	SelectedMethod PaymentMethodID  `json:"selectedPaymentMethodId,omitempty"`
	Card           *CardDetails     `json:"card,omitempty"`
	Shipping       *ShippingDetails `json:"shipping,omitempty"`
}

// Clone returns a deep copy so callers never alias a session's draft.
func (d Draft) Clone() Draft {
	out := d
	if d.Card != nil {
		card := *d.Card
		out.Card = &card
	}
	if d.Shipping != nil {
		ship := *d.Shipping
		out.Shipping = &ship
	}
	return out
}
