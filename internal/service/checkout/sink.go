package checkout

import (
	"context"
	"errors"

	"storefront-checkout/internal/domain"
)

// OrderSink receives every finalized order. It is the boundary to whatever
// persists or confirms orders; checkout itself stores nothing durable.
type OrderSink interface {
	PlaceOrder(ctx context.Context, order domain.Order) error
}

// OrderSinkFunc adapts a function to OrderSink.
type OrderSinkFunc func(ctx context.Context, order domain.Order) error

func (f OrderSinkFunc) PlaceOrder(ctx context.Context, order domain.Order) error {
	return f(ctx, order)
}

// MultiSink hands the order to each sink in turn and stops at the first error.
type MultiSink []OrderSink

func (m MultiSink) PlaceOrder(ctx context.Context, order domain.Order) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PlaceOrder(ctx, order); err != nil {
			return err
		}
	}
	return nil
}

// Durable adapts an order store. Storing an order the store already holds
// counts as success, so a retried placement keeps a single order per id.
func Durable(create func(ctx context.Context, order domain.Order) error) OrderSink {
	return OrderSinkFunc(func(ctx context.Context, order domain.Order) error {
		if err := create(ctx, order); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
		return nil
	})
}

// BestEffort wraps a sink that runs after the order is durable, such as event
// publishing. Its failures go to OnError and never fail the placement.
type BestEffort struct {
	Sink    OrderSink
	OnError func(order domain.Order, err error)
}

func (b BestEffort) PlaceOrder(ctx context.Context, order domain.Order) error {
	if b.Sink == nil {
		return nil
	}
	if err := b.Sink.PlaceOrder(ctx, order); err != nil && b.OnError != nil {
		b.OnError(order, err)
	}
	return nil
}

// Recorder observes checkout outcomes.
type Recorder interface {
	SubmissionRejected(reason string)
	RedirectStarted(method domain.PaymentMethodID)
	RedirectCancelled(method domain.PaymentMethodID)
	OrderPlaced(method domain.PaymentMethodID, status domain.OrderStatus)
}

type nopRecorder struct{}

func (nopRecorder) SubmissionRejected(string) {}
func (nopRecorder) RedirectStarted(domain.PaymentMethodID) {}
func (nopRecorder) RedirectCancelled(domain.PaymentMethodID) {}
func (nopRecorder) OrderPlaced(domain.PaymentMethodID, domain.OrderStatus) {}
