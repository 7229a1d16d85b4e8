package checkout

import "storefront-checkout/internal/domain"

// Flow is the checkout variant, fixed once per session from the cart snapshot.
type Flow string

const (
	// FlowStandard lets the buyer pick one of the enabled payment methods.
	FlowStandard Flow = "standard"
	// FlowMarketplaceRequest collects shipping details and bypasses payment selection.
	FlowMarketplaceRequest Flow = "marketplaceRequest"
)

func selectFlow(snapshot domain.CartSnapshot) Flow {
	if snapshot.HasCustomOrderType(domain.CustomOrderAliexpress) {
		return FlowMarketplaceRequest
	}
	return FlowStandard
}

// State is the lifecycle position of a checkout session.
type State string

const (
	StateIdle        State = "idle"
	StateRedirecting State = "redirecting"
	StatePlacing     State = "placing"
	StateCompleted   State = "completed"
	StateAbandoned   State = "abandoned"
)

// Closed reports whether the session can no longer change.
func (s State) Closed() bool {
	return s == StateCompleted || s == StateAbandoned
}
