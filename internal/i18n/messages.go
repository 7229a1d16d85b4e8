package i18n

// Message keys used by the checkout flow.
const (
	KeyRedirectNotice       = "checkout.redirect.notice"
	KeyRedirectWaiting      = "checkout.redirect.waiting"
	KeyBankAccountName      = "checkout.bank.accountName"
	KeyBankAccountNumber    = "checkout.bank.accountNumber"
	KeyBankName             = "checkout.bank.bankName"
	KeyBankContact          = "checkout.bank.contact"
	KeyMarketplaceNotice    = "checkout.marketplace.notice"
	KeySelectionRequired    = "checkout.selection.required"
	KeySelectionUnavailable = "checkout.selection.unavailable"
	KeyNoPaymentMethods     = "checkout.selection.none"
	KeyProcessorDeclined    = "checkout.processor.declined"
	KeyOrderNotPlaced       = "checkout.order.notPlaced"
)

var catalog = map[string]map[string]string{
	"en": {
		KeyRedirectNotice:       "You will be redirected to {0} to complete your payment.",
		KeyRedirectWaiting:      "Redirecting to {0}...",
		KeyBankAccountName:      "Account name: {0}",
		KeyBankAccountNumber:    "Account number: {0}",
		KeyBankName:             "Bank: {0}",
		KeyBankContact:          "Send the transfer receipt to: {0}",
		KeyMarketplaceNotice:    "This order is fulfilled manually. We will contact you with shipping and payment details.",
		KeySelectionRequired:    "Choose a payment method.",
		KeySelectionUnavailable: "This payment method is not available.",
		KeyNoPaymentMethods:     "No payment methods are available right now.",
		KeyProcessorDeclined:    "The payment was not completed. Please try again.",
		KeyOrderNotPlaced:       "We could not place your order. Please try again.",
		"validation.required":   "This field is required.",
		"validation.email":      "Enter a valid email address.",
		"validation.cardnumber": "Card number must be 16 digits in groups of four.",
		"validation.cardexpiry": "Expiry must be in MM/YY format.",
		"validation.cvc":        "CVC must be 3 or 4 digits.",
		"validation.phone8":     "Phone number must be exactly 8 digits.",
	},
	"ar": {
		KeyRedirectNotice:       "سيتم تحويلك إلى {0} لإتمام الدفع.",
		KeyRedirectWaiting:      "جارٍ التحويل إلى {0}...",
		KeyBankAccountName:      "اسم الحساب: {0}",
		KeyBankAccountNumber:    "رقم الحساب: {0}",
		KeyBankName:             "البنك: {0}",
		KeyBankContact:          "أرسل إيصال التحويل إلى: {0}",
		KeyMarketplaceNotice:    "يتم تنفيذ هذا الطلب يدويًا. سنتواصل معك بتفاصيل الشحن والدفع.",
		KeySelectionRequired:    "اختر طريقة الدفع.",
		KeySelectionUnavailable: "طريقة الدفع هذه غير متاحة.",
		KeyNoPaymentMethods:     "لا توجد طرق دفع متاحة حاليًا.",
		KeyProcessorDeclined:    "لم تكتمل عملية الدفع. حاول مرة أخرى.",
		KeyOrderNotPlaced:       "تعذر إنشاء طلبك. حاول مرة أخرى.",
		"validation.required":   "هذا الحقل مطلوب.",
		"validation.email":      "أدخل بريدًا إلكترونيًا صحيحًا.",
		"validation.cardnumber": "يجب أن يتكون رقم البطاقة من 16 رقمًا في مجموعات من أربعة.",
		"validation.cardexpiry": "يجب أن يكون تاريخ الانتهاء بصيغة MM/YY.",
		"validation.cvc":        "يجب أن يتكون رمز CVC من 3 أو 4 أرقام.",
		"validation.phone8":     "يجب أن يتكون رقم الهاتف من 8 أرقام بالضبط.",
	},
}
