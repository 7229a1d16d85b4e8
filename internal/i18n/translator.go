package i18n

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/currency"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/shopspring/decimal"
)

// currencies maps ISO 4217 codes to the CLDR currency enum.
var currencies = map[string]currency.Type{
	"AED": currency.AED, "AFN": currency.AFN, "ALL": currency.ALL, "AMD": currency.AMD, "ANG": currency.ANG, "AOA": currency.AOA,
	"ARS": currency.ARS, "AUD": currency.AUD, "AWG": currency.AWG, "AZN": currency.AZN, "BAM": currency.BAM, "BBD": currency.BBD,
	"BDT": currency.BDT, "BGN": currency.BGN, "BHD": currency.BHD, "BIF": currency.BIF, "BMD": currency.BMD, "BND": currency.BND,
	"BOB": currency.BOB, "BRL": currency.BRL, "BSD": currency.BSD, "BTN": currency.BTN, "BWP": currency.BWP, "BZD": currency.BZD,
	"CAD": currency.CAD, "CDF": currency.CDF, "CHF": currency.CHF, "CLP": currency.CLP, "CNY": currency.CNY, "COP": currency.COP,
	"CRC": currency.CRC, "CUP": currency.CUP, "CVE": currency.CVE, "CZK": currency.CZK, "DJF": currency.DJF, "DKK": currency.DKK,
	"DOP": currency.DOP, "DZD": currency.DZD, "EGP": currency.EGP, "ERN": currency.ERN, "ETB": currency.ETB, "EUR": currency.EUR,
	"FJD": currency.FJD, "FKP": currency.FKP, "GBP": currency.GBP, "GEL": currency.GEL, "GHS": currency.GHS, "GIP": currency.GIP,
	"GMD": currency.GMD, "GNF": currency.GNF, "GTQ": currency.GTQ, "GYD": currency.GYD, "HKD": currency.HKD, "HNL": currency.HNL,
	"HTG": currency.HTG, "HUF": currency.HUF, "IDR": currency.IDR, "ILS": currency.ILS, "INR": currency.INR, "IQD": currency.IQD,
	"IRR": currency.IRR, "ISK": currency.ISK, "JMD": currency.JMD, "JOD": currency.JOD, "JPY": currency.JPY, "KES": currency.KES,
	"KGS": currency.KGS, "KHR": currency.KHR, "KMF": currency.KMF, "KPW": currency.KPW, "KRW": currency.KRW, "KWD": currency.KWD,
	"KYD": currency.KYD, "KZT": currency.KZT, "LAK": currency.LAK, "LBP": currency.LBP, "LKR": currency.LKR, "LRD": currency.LRD,
	"LSL": currency.LSL, "LYD": currency.LYD, "MAD": currency.MAD, "MDL": currency.MDL, "MGA": currency.MGA, "MKD": currency.MKD,
	"MMK": currency.MMK, "MNT": currency.MNT, "MOP": currency.MOP, "MUR": currency.MUR, "MVR": currency.MVR, "MWK": currency.MWK,
	"MXN": currency.MXN, "MYR": currency.MYR, "MZN": currency.MZN, "NAD": currency.NAD, "NGN": currency.NGN, "NIO": currency.NIO,
	"NOK": currency.NOK, "NPR": currency.NPR, "NZD": currency.NZD, "OMR": currency.OMR, "PAB": currency.PAB, "PEN": currency.PEN,
	"PGK": currency.PGK, "PHP": currency.PHP, "PKR": currency.PKR, "PLN": currency.PLN, "PYG": currency.PYG, "QAR": currency.QAR,
	"RON": currency.RON, "RSD": currency.RSD, "RUB": currency.RUB, "RWF": currency.RWF, "SAR": currency.SAR, "SBD": currency.SBD,
	"SCR": currency.SCR, "SDG": currency.SDG, "SEK": currency.SEK, "SGD": currency.SGD, "SHP": currency.SHP, "SOS": currency.SOS,
	"SRD": currency.SRD, "SSP": currency.SSP, "SYP": currency.SYP, "SZL": currency.SZL, "THB": currency.THB, "TJS": currency.TJS,
	"TMT": currency.TMT, "TND": currency.TND, "TOP": currency.TOP, "TRY": currency.TRY, "TTD": currency.TTD, "TWD": currency.TWD,
	"TZS": currency.TZS, "UAH": currency.UAH, "UGX": currency.UGX, "USD": currency.USD, "UYU": currency.UYU, "UZS": currency.UZS,
	"VND": currency.VND, "VUV": currency.VUV, "WST": currency.WST, "XAF": currency.XAF, "XCD": currency.XCD, "XOF": currency.XOF,
	"XPF": currency.XPF, "YER": currency.YER, "ZAR": currency.ZAR, "ZMW": currency.ZMW,
}

var isoCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Translator renders user-facing copy and money for one locale and currency.
type Translator struct {
	trans    ut.Translator
	currency currency.Type
	symbol   bool
	code     string
}

// New builds a Translator. Unknown locales fall back to English. Any
// three-letter currency code is accepted; codes without CLDR symbols are
// rendered as the code followed by the locale-formatted amount.
func New(locale, currencyCode string) (*Translator, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if !isoCode.MatchString(code) {
		return nil, fmt.Errorf("invalid currency code %q", currencyCode)
	}
	cur, known := currencies[code]

	fallback := en.New()
	uni := ut.New(fallback, fallback, ar.New())
	for loc, messages := range catalog {
		t, found := uni.GetTranslator(loc)
		if !found {
			continue
		}
		for key, text := range messages {
			if err := t.Add(key, text, true); err != nil {
				return nil, fmt.Errorf("add translation %s/%s: %w", loc, key, err)
			}
		}
	}

	trans, _ := uni.GetTranslator(strings.ToLower(strings.TrimSpace(locale)))
	return &Translator{trans: trans, currency: cur, symbol: known, code: code}, nil
}

// T translates key, substituting {0}, {1}... with params. Missing keys render as the key itself.
func (t *Translator) T(key string, params ...string) string {
	out, err := t.trans.T(key, params...)
	if err != nil {
		return key
	}
	return out
}

// FormatCurrency formats amount with two fraction digits in the translator's currency.
func (t *Translator) FormatCurrency(amount decimal.Decimal) string {
	v := amount.Round(2).InexactFloat64()
	if !t.symbol {
		return t.code + " " + t.trans.FmtNumber(v, 2)
	}
	return t.trans.FmtCurrency(v, 2, t.currency)
}

// Locale returns the effective locale.
func (t *Translator) Locale() string {
	return t.trans.Locale()
}

// Currency returns the ISO currency code.
func (t *Translator) Currency() string {
	return t.code
}
