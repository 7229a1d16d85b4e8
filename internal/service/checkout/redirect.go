package checkout

import (
	"context"
	"time"

	"storefront-checkout/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuthorizationRequest is what the buyer is handed off to the processor with.
type AuthorizationRequest struct {
	SessionID  string
	Method     domain.PaymentMethodID
	Amount     decimal.Decimal
	Currency   string
	BuyerEmail string
}

// Authorization is the processor's confirmation.
type Authorization struct {
	Approved  bool
	Reference string
	Reason    string
}

// Processor confirms redirect-style payments. Authorize must return promptly
// once ctx is cancelled.
type Processor interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (Authorization, error)
}

// SimulatedProcessor approves every request after Delay.
type SimulatedProcessor struct {
	Delay time.Duration
}

func (p SimulatedProcessor) Authorize(ctx context.Context, req AuthorizationRequest) (Authorization, error) {
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Authorization{}, ctx.Err()
	case <-timer.C:
		return Authorization{Approved: true, Reference: "sim-" + uuid.NewString()}, nil
	}
}

// RedirectState tracks the single in-flight processor hand-off.
type RedirectState string

const (
	RedirectIdle        RedirectState = "idle"
	RedirectRedirecting RedirectState = "redirecting"
	RedirectCompleted   RedirectState = "completed"
)

// RedirectSimulator owns the cancellable task of a redirect hand-off.
// It is not safe for concurrent use; the owning session serializes calls.
type RedirectSimulator struct {
	processor Processor
	state     RedirectState
	attempt   uint64
	method    domain.PaymentMethodID
	cancel    context.CancelFunc
}

func NewRedirectSimulator(p Processor) *RedirectSimulator {
	return &RedirectSimulator{processor: p, state: RedirectIdle}
}

// Begin starts the processor call in its own goroutine under a child of
// parent. done is invoked exactly once with the attempt number, even when the
// attempt was cancelled; callers use Finish to discard stale results.
func (r *RedirectSimulator) Begin(parent context.Context, req AuthorizationRequest, done func(attempt uint64, auth Authorization, err error)) (uint64, error) {
	if r.state == RedirectRedirecting {
		return 0, ErrRedirectInFlight
	}
	ctx, cancel := context.WithCancel(parent)
	r.attempt++
	r.cancel = cancel
	r.method = req.Method
	r.state = RedirectRedirecting

	attempt := r.attempt
	processor := r.processor
	go func() {
		auth, err := processor.Authorize(ctx, req)
		done(attempt, auth, err)
	}()
	return attempt, nil
}

// Finish accepts the result of attempt if it is still the live one and
// releases its context.
func (r *RedirectSimulator) Finish(attempt uint64) bool {
	if r.state != RedirectRedirecting || attempt != r.attempt {
		return false
	}
	r.release()
	r.state = RedirectCompleted
	return true
}

// Cancel aborts the in-flight attempt. It reports whether one was running.
func (r *RedirectSimulator) Cancel() bool {
	if r.state != RedirectRedirecting {
		return false
	}
	r.release()
	r.attempt++
	r.state = RedirectIdle
	return true
}

// Reset returns a completed simulator to idle.
func (r *RedirectSimulator) Reset() {
	if r.state == RedirectCompleted {
		r.state = RedirectIdle
	}
}

func (r *RedirectSimulator) State() RedirectState {
	return r.state
}

// Method is the payment method of the current or last attempt.
func (r *RedirectSimulator) Method() domain.PaymentMethodID {
	return r.method
}

func (r *RedirectSimulator) release() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
