package catalog

import (
	"sort"
	"strings"

	"storefront-checkout/internal/domain"
)

var defaults = map[domain.PaymentMethodID]struct {
	name string
	icon string
}{
	domain.PaymentCard:          {name: "Credit / Debit Card", icon: "credit-card"},
	domain.PaymentPayPal:        {name: "PayPal", icon: "paypal"},
	domain.PaymentStripeLike:    {name: "Stripe", icon: "stripe"},
	domain.PaymentCryptoPay:     {name: "Crypto Pay", icon: "bitcoin"},
	domain.PaymentBankTransfer:  {name: "Bank Transfer", icon: "bank"},
	domain.PaymentOtherRedirect: {name: "Online Payment", icon: "external-link"},
}

// Build returns the enabled payment methods. Card always comes first, the rest
// follow by configured priority with ties broken by canonical order.
func Build(settings domain.Settings) []domain.PaymentMethod {
	byID := make(map[domain.PaymentMethodID]domain.ProviderSetting, len(settings.Providers))
	for _, p := range settings.Providers {
		if _, known := defaults[p.ID]; !known {
			continue
		}
		byID[p.ID] = p
	}

	type ranked struct {
		method    domain.PaymentMethod
		priority  int
		canonical int
	}
	var enabled []ranked
	for i, id := range domain.CanonicalPaymentMethods {
		p, ok := byID[id]
		if !ok || !p.Enabled {
			continue
		}
		enabled = append(enabled, ranked{method: toMethod(p), priority: p.Priority, canonical: i})
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		a, b := enabled[i], enabled[j]
		if (a.method.ID == domain.PaymentCard) != (b.method.ID == domain.PaymentCard) {
			return a.method.ID == domain.PaymentCard
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.canonical < b.canonical
	})

	out := make([]domain.PaymentMethod, 0, len(enabled))
	for _, r := range enabled {
		out = append(out, r.method)
	}
	return out
}

// Contains reports whether id is one of methods.
func Contains(methods []domain.PaymentMethod, id domain.PaymentMethodID) bool {
	for _, m := range methods {
		if m.ID == id {
			return true
		}
	}
	return false
}

func toMethod(p domain.ProviderSetting) domain.PaymentMethod {
	def := defaults[p.ID]
	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = def.name
	}
	icon := strings.TrimSpace(p.IconRef)
	if icon == "" {
		icon = def.icon
	}
	return domain.PaymentMethod{
		ID:          p.ID,
		DisplayName: name,
		IconRef:     icon,
		Enabled:     true,
	}
}
