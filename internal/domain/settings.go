package domain

import "time"

// DefaultRedirectDelay is how long the simulated processor hand-off takes.
const DefaultRedirectDelay = 3 * time.Second

// ProviderSetting is the merchant configuration for one payment provider.
type ProviderSetting struct {
	ID          PaymentMethodID `json:"id"`
	Enabled     bool            `json:"enabled"`
	DisplayName string          `json:"displayName,omitempty"`
	IconRef     string          `json:"iconRef,omitempty"`
	Priority    int             `json:"priority"`
}

// ToggleField is a display value that the merchant can switch off.
type ToggleField struct {
	Enabled bool   `json:"enabled"`
	Value   string `json:"value"`
}

// BankTransferSettings drives the static bank instructions.
type BankTransferSettings struct {
	AccountName   ToggleField `json:"accountName"`
	AccountNumber ToggleField `json:"accountNumber"`
	BankName      ToggleField `json:"bankName"`
	Contact       ToggleField `json:"contact"`
}

// Settings is the configuration snapshot a checkout session is started with.
type Settings struct {
	Providers              []ProviderSetting    `json:"providers"`
	BankTransfer           BankTransferSettings `json:"bankTransfer"`
	MarketplaceRequestNote string               `json:"marketplaceRequestNote,omitempty"`
	Currency               string               `json:"currency"`
	Locale                 string               `json:"locale"`
	RedirectDelayMS        int64                `json:"redirectDelayMs,omitempty"`
}

// RedirectDelay returns the configured delay or DefaultRedirectDelay.
func (s Settings) RedirectDelay() time.Duration {
	if s.RedirectDelayMS <= 0 {
		return DefaultRedirectDelay
	}
	return time.Duration(s.RedirectDelayMS) * time.Millisecond
}

// Clone deep-copies the provider list.
func (s Settings) Clone() Settings {
	out := s
	out.Providers = append([]ProviderSetting(nil), s.Providers...)
	return out
}

// DefaultSettings enables every provider in canonical order.
func DefaultSettings(currency, locale string) Settings {
	providers := make([]ProviderSetting, 0, len(CanonicalPaymentMethods))
	for i, id := range CanonicalPaymentMethods {
		providers = append(providers, ProviderSetting{ID: id, Enabled: true, Priority: i})
	}
	return Settings{
		Providers: providers,
		Currency:  currency,
		Locale:    locale,
	}
}
