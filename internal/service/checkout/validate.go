package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/i18n"

	"github.com/go-playground/validator/v10"
)

var (
	cardNumberRe = regexp.MustCompile(`^(\d{4} \d{4} \d{4} \d{4}|\d{16})$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcRe        = regexp.MustCompile(`^\d{3,4}$`)
	phone8Re     = regexp.MustCompile(`^\d{8}$`)
)

type identityForm struct {
	BuyerName  string `form:"buyerName" validate:"required"`
	BuyerEmail string `form:"buyerEmail" validate:"required,email"`
}

type cardForm struct {
	Number string `form:"number" validate:"required,cardnumber"`
	Expiry string `form:"expiry" validate:"required,cardexpiry"`
	CVC    string `form:"cvc" validate:"required,cvc"`
}

type shippingForm struct {
	PhoneNumber string `form:"phoneNumber" validate:"required"`
	Address     string `form:"address" validate:"required"`
	City        string `form:"city" validate:"required"`
	PostalCode  string `form:"postalCode" validate:"required"`
}

type topUpForm struct {
	PhoneNumber string `form:"phoneNumber" validate:"required,phone8"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	register := func(tag string, re *regexp.Regexp) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	register("cardnumber", cardNumberRe)
	register("cardexpiry", cardExpiryRe)
	register("cvc", cvcRe)
	register("phone8", phone8Re)
	return v
}

var validate = newValidator()

// formChecker collects field errors across the forms of one submission.
type formChecker struct {
	tr     *i18n.Translator
	fields []domain.FieldError
}

func (c *formChecker) check(prefix string, form any) {
	err := validate.Struct(form)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.fields = append(c.fields, domain.FieldError{Field: strings.TrimSuffix(prefix, "."), Code: "invalid", Message: err.Error()})
		return
	}
	for _, fe := range verrs {
		code := fe.Tag()
		c.fields = append(c.fields, domain.FieldError{
			Field:   prefix + fe.Field(),
			Code:    code,
			Message: c.tr.T("validation." + code),
		})
	}
}

func (c *formChecker) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: c.fields}
}

// validateSubmission applies the rule set of the active flow and method.
func validateSubmission(flow Flow, draft domain.Draft, methods []domain.PaymentMethod, snapshot domain.CartSnapshot, tr *i18n.Translator) error {
	if flow == FlowStandard {
		if err := checkSelection(draft.SelectedMethod, methods, tr); err != nil {
			return err
		}
	}

	c := &formChecker{tr: tr}
	c.check("", identityForm{
		BuyerName:  strings.TrimSpace(draft.BuyerName),
		BuyerEmail: strings.TrimSpace(draft.BuyerEmail),
	})

	switch {
	case flow == FlowMarketplaceRequest:
		ship := domain.ShippingDetails{}
		if draft.Shipping != nil {
			ship = *draft.Shipping
		}
		c.check("shipping.", shippingForm{
			PhoneNumber: strings.TrimSpace(ship.PhoneNumber),
			Address:     strings.TrimSpace(ship.Address),
			City:        strings.TrimSpace(ship.City),
			PostalCode:  strings.TrimSpace(ship.PostalCode),
		})
	case draft.SelectedMethod == domain.PaymentCard:
		card := domain.CardDetails{}
		if draft.Card != nil {
			card = *draft.Card
		}
		c.check("card.", cardForm{
			Number: strings.TrimSpace(card.Number),
			Expiry: strings.TrimSpace(card.Expiry),
			CVC:    strings.TrimSpace(card.CVC),
		})
	}

	for i, item := range snapshot.Items() {
		if item.OrderType() != domain.CustomOrderMobileData {
			continue
		}
		c.check(fmt.Sprintf("items[%d].", i), topUpForm{PhoneNumber: strings.TrimSpace(item.Metadata.PhoneNumber)})
	}

	return c.err()
}

func checkSelection(id domain.PaymentMethodID, methods []domain.PaymentMethod, tr *i18n.Translator) error {
	if len(methods) == 0 {
		return &domain.SelectionError{Reason: tr.T(i18n.KeyNoPaymentMethods)}
	}
	if id == "" {
		return &domain.SelectionError{Reason: tr.T(i18n.KeySelectionRequired)}
	}
	for _, m := range methods {
		if m.ID == id {
			return nil
		}
	}
	return &domain.SelectionError{MethodID: id, Reason: tr.T(i18n.KeySelectionUnavailable)}
}
