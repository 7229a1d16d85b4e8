package checkout

import "errors"

var (
	// ErrRedirectInFlight blocks re-entry while a processor hand-off is pending.
	ErrRedirectInFlight = errors.New("payment redirect already in progress")
	// ErrPlacementInFlight blocks re-entry while the order sink is being called.
	ErrPlacementInFlight = errors.New("order placement already in progress")
	// ErrOrderPending refuses draft changes once an order was assembled but
	// not yet stored; Submit retries that same order.
	ErrOrderPending = errors.New("order awaiting placement retry")
	// ErrSessionClosed is returned for operations on completed or abandoned sessions.
	ErrSessionClosed = errors.New("checkout session is closed")
	// ErrDeclined is the processor's refusal to confirm a payment.
	ErrDeclined = errors.New("payment declined by processor")
)
