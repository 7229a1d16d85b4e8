package checkout

import (
	"fmt"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/i18n"

	"github.com/shopspring/decimal"
)

// View is everything a client needs to render the checkout form.
type View struct {
	SessionID         string                  `json:"sessionId"`
	Flow              Flow                    `json:"flow"`
	State             State                   `json:"state"`
	Methods           []domain.PaymentMethod  `json:"paymentMethods"`
	SelectedMethod    domain.PaymentMethodID  `json:"selectedPaymentMethodId,omitempty"`
	RequiredFields    []string                `json:"requiredFields"`
	BankInstructions  []string                `json:"bankInstructions,omitempty"`
	RedirectNotice    string                  `json:"redirectNotice,omitempty"`
	MarketplaceNotice string                  `json:"marketplaceNotice,omitempty"`
	Items             []domain.CartItem       `json:"items"`
	Total             decimal.Decimal         `json:"total"`
	TotalFormatted    string                  `json:"totalFormatted"`
	Currency          string                  `json:"currency"`
	BuyerName         string                  `json:"buyerName"`
	BuyerEmail        string                  `json:"buyerEmail"`
	Shipping          *domain.ShippingDetails `json:"shipping,omitempty"`
	SubmitEnabled     bool                    `json:"submitEnabled"`
	Error             *ErrorView              `json:"error,omitempty"`
	Order             *domain.Order           `json:"order,omitempty"`
}

// ErrorView is the inline message for the last failed attempt.
type ErrorView struct {
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func requiredFields(flow Flow, method domain.PaymentMethodID, snapshot domain.CartSnapshot) []string {
	fields := []string{"buyerName", "buyerEmail"}
	switch {
	case flow == FlowMarketplaceRequest:
		fields = append(fields, "shipping.phoneNumber", "shipping.address", "shipping.city", "shipping.postalCode")
	case method == domain.PaymentCard:
		fields = append(fields, "card.number", "card.expiry", "card.cvc")
	}
	for i, item := range snapshot.Items() {
		if item.OrderType() == domain.CustomOrderMobileData {
			fields = append(fields, fmt.Sprintf("items[%d].phoneNumber", i))
		}
	}
	return fields
}

func bankInstructions(bank domain.BankTransferSettings, tr *i18n.Translator) []string {
	lines := []struct {
		key   string
		field domain.ToggleField
	}{
		{i18n.KeyBankAccountName, bank.AccountName},
		{i18n.KeyBankAccountNumber, bank.AccountNumber},
		{i18n.KeyBankName, bank.BankName},
		{i18n.KeyBankContact, bank.Contact},
	}
	var out []string
	for _, l := range lines {
		if !l.field.Enabled || l.field.Value == "" {
			continue
		}
		out = append(out, tr.T(l.key, l.field.Value))
	}
	return out
}

func errorView(err error, tr *i18n.Translator) *ErrorView {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case *domain.ValidationError:
		return &ErrorView{Message: e.Error(), Fields: e.Fields}
	case *domain.SelectionError:
		return &ErrorView{Message: e.Reason, Fields: []domain.FieldError{{Field: "paymentMethod", Code: "selection", Message: e.Reason}}}
	case *domain.ProcessorError:
		return &ErrorView{Message: tr.T(i18n.KeyProcessorDeclined)}
	case *domain.OrderPersistenceError:
		return &ErrorView{Message: tr.T(i18n.KeyOrderNotPlaced)}
	default:
		return &ErrorView{Message: err.Error()}
	}
}
