package checkout

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/i18n"
	"storefront-checkout/internal/service/catalog"
	"storefront-checkout/internal/service/order"
)

// DraftPatch updates the buyer-entered fields; nil fields are left unchanged.
type DraftPatch struct {
	BuyerName  *string                 `json:"buyerName,omitempty"`
	BuyerEmail *string                 `json:"buyerEmail,omitempty"`
	Card       *domain.CardDetails     `json:"card,omitempty"`
	Shipping   *domain.ShippingDetails `json:"shipping,omitempty"`
}

// SubmitResult tells the caller whether the order was placed now or a redirect started.
type SubmitResult struct {
	Order       *domain.Order
	Redirecting bool
}

// Session is one buyer's checkout. All methods are safe for concurrent use;
// the redirect task is the only goroutine that acts on a session by itself.
// The order sink is called without holding mu; StatePlacing blocks re-entry
// for the duration of that call.
type Session struct {
	mu sync.Mutex

	id        string
	flow      Flow
	snapshot  domain.CartSnapshot
	settings  domain.Settings
	methods   []domain.PaymentMethod
	tr        *i18n.Translator
	assembler *order.Assembler
	sink      OrderSink
	recorder  Recorder
	logger    *log.Logger
	now       func() time.Time

	scope context.Context
	stop  context.CancelFunc

	draft      domain.Draft
	state      State
	redirect   *RedirectSimulator
	order      *domain.Order
	pending    *domain.Order
	lastErr    error
	lastActive atomic.Int64
	changed    chan struct{}
}

type sessionDeps struct {
	assembler *order.Assembler
	sink      OrderSink
	processor Processor
	recorder  Recorder
	logger    *log.Logger
	now       func() time.Time
}

func newSession(id string, snapshot domain.CartSnapshot, settings domain.Settings, tr *i18n.Translator, user *domain.CurrentUser, deps sessionDeps) *Session {
	scope, stop := context.WithCancel(context.Background())
	s := &Session{
		id:        id,
		flow:      selectFlow(snapshot),
		snapshot:  snapshot,
		settings:  settings,
		methods:   catalog.Build(settings),
		tr:        tr,
		assembler: deps.assembler,
		sink:      deps.sink,
		recorder:  deps.recorder,
		logger:    deps.logger,
		now:       deps.now,
		scope:     scope,
		stop:      stop,
		state:     StateIdle,
		redirect:  NewRedirectSimulator(deps.processor),
		changed:   make(chan struct{}),
	}
	if user != nil {
		s.draft.BuyerName = strings.TrimSpace(user.Name)
		s.draft.BuyerEmail = strings.TrimSpace(user.Email)
	}
	if s.flow == FlowMarketplaceRequest {
		s.draft.Shipping = &domain.ShippingDetails{}
	}
	s.touch()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Flow() Flow {
	return s.flow
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the buyer-entered fields.
func (s *Session) Draft() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Order returns the placed order, if any.
func (s *Session) Order() (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return domain.Order{}, false
	}
	return *s.order, true
}

// UpdateDraft applies patch. Edits are refused while a redirect is pending
// because the redirect already captured the draft.
func (s *Session) UpdateDraft(patch DraftPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if s.pending != nil {
		return ErrOrderPending
	}
	s.touch()
	if patch.BuyerName != nil {
		s.draft.BuyerName = *patch.BuyerName
	}
	if patch.BuyerEmail != nil {
		s.draft.BuyerEmail = *patch.BuyerEmail
	}
	if patch.Card != nil && s.flow == FlowStandard {
		card := *patch.Card
		s.draft.Card = &card
	}
	if patch.Shipping != nil && s.flow == FlowMarketplaceRequest {
		ship := *patch.Shipping
		s.draft.Shipping = &ship
	}
	return nil
}

// SelectPaymentMethod picks one of the enabled methods. Choosing a different
// method while redirecting cancels the pending hand-off.
func (s *Session) SelectPaymentMethod(id domain.PaymentMethodID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Closed() {
		return ErrSessionClosed
	}
	if s.state == StatePlacing {
		return ErrPlacementInFlight
	}
	if s.pending != nil {
		return ErrOrderPending
	}
	if s.flow == FlowMarketplaceRequest {
		return &domain.SelectionError{MethodID: id, Reason: s.tr.T(i18n.KeySelectionUnavailable)}
	}
	if !catalog.Contains(s.methods, id) {
		return &domain.SelectionError{MethodID: id, Reason: s.tr.T(i18n.KeySelectionUnavailable)}
	}
	s.touch()
	if s.state == StateRedirecting {
		if id == s.redirect.Method() {
			return nil
		}
		s.cancelRedirect("method changed")
	}
	s.draft.SelectedMethod = id
	s.lastErr = nil
	return nil
}

// Submit validates the draft and either places the order immediately or
// starts the redirect hand-off. After a failed placement, Submit retries the
// same order instead of assembling a new one.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	o, redirecting, err := s.prepareSubmit()
	if err != nil || redirecting {
		return SubmitResult{Redirecting: redirecting}, err
	}
	placed, err := s.deliver(ctx, o)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Order: &placed}, nil
}

// prepareSubmit runs the locked part of Submit. It returns the order to
// deliver, or reports that a redirect started instead.
func (s *Session) prepareSubmit() (domain.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return domain.Order{}, false, err
	}
	s.touch()

	if s.pending != nil {
		s.logger.Printf("checkout: session=%s retrying order_id=%s", s.id, s.pending.ID)
		s.setState(StatePlacing)
		return *s.pending, false, nil
	}

	if err := validateSubmission(s.flow, s.draft, s.methods, s.snapshot, s.tr); err != nil {
		s.lastErr = err
		s.recorder.SubmissionRejected(rejectReason(err))
		return domain.Order{}, false, err
	}

	method := s.draft.SelectedMethod
	if s.flow == FlowMarketplaceRequest {
		method = domain.PaymentAliexpressRequest
	}

	if method.IsRedirect() {
		captured := s.draft.Clone()
		req := AuthorizationRequest{
			SessionID:  s.id,
			Method:     method,
			Amount:     s.snapshot.Total(),
			Currency:   s.settings.Currency,
			BuyerEmail: strings.TrimSpace(captured.BuyerEmail),
		}
		if _, err := s.redirect.Begin(s.scope, req, func(attempt uint64, auth Authorization, err error) {
			s.finishRedirect(attempt, captured, method, auth, err)
		}); err != nil {
			return domain.Order{}, false, err
		}
		s.lastErr = nil
		s.setState(StateRedirecting)
		s.recorder.RedirectStarted(method)
		s.logger.Printf("checkout: session=%s redirect started method=%s", s.id, method)
		return domain.Order{}, true, nil
	}

	return s.assemble(s.draft, method), false, nil
}

// Abandon closes the session, cancelling a pending redirect. It reports
// whether the session was still open.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Closed() {
		return false
	}
	if s.state == StateRedirecting {
		s.cancelRedirect("session abandoned")
	}
	if s.state == StatePlacing {
		s.logger.Printf("checkout: session=%s abandoned during placement order_id=%s", s.id, s.pending.ID)
	}
	s.stop()
	s.setState(StateAbandoned)
	s.logger.Printf("checkout: session=%s abandoned", s.id)
	return true
}

// Wait blocks while a redirect or placement is pending. It returns the placed
// order, or the error of the attempt that returned the session to idle.
func (s *Session) Wait(ctx context.Context) (*domain.Order, error) {
	for {
		s.mu.Lock()
		if s.state != StateRedirecting && s.state != StatePlacing {
			o, err := s.outcome()
			s.mu.Unlock()
			return o, err
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *Session) outcome() (*domain.Order, error) {
	switch s.state {
	case StateCompleted:
		o := *s.order
		return &o, nil
	case StateAbandoned:
		if s.order != nil {
			o := *s.order
			return &o, nil
		}
		return nil, ErrSessionClosed
	default:
		return nil, s.lastErr
	}
}

// View renders the form for the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	method := s.draft.SelectedMethod
	total := s.snapshot.Total()
	v := View{
		SessionID:      s.id,
		Flow:           s.flow,
		State:          s.state,
		Methods:        append([]domain.PaymentMethod(nil), s.methods...),
		SelectedMethod: method,
		RequiredFields: requiredFields(s.flow, method, s.snapshot),
		Items:          s.snapshot.Items(),
		Total:          total,
		TotalFormatted: s.tr.FormatCurrency(total),
		Currency:       s.tr.Currency(),
		BuyerName:      s.draft.BuyerName,
		BuyerEmail:     s.draft.BuyerEmail,
		Error:          errorView(s.lastErr, s.tr),
	}

	switch {
	case s.flow == FlowMarketplaceRequest:
		v.Methods = nil
		v.SelectedMethod = ""
		v.MarketplaceNotice = s.settings.MarketplaceRequestNote
		if v.MarketplaceNotice == "" {
			v.MarketplaceNotice = s.tr.T(i18n.KeyMarketplaceNotice)
		}
		if s.draft.Shipping != nil {
			ship := *s.draft.Shipping
			v.Shipping = &ship
		}
	case method == domain.PaymentBankTransfer:
		v.BankInstructions = bankInstructions(s.settings.BankTransfer, s.tr)
	case method.IsRedirect():
		key := i18n.KeyRedirectNotice
		if s.state == StateRedirecting {
			key = i18n.KeyRedirectWaiting
		}
		v.RedirectNotice = s.tr.T(key, s.methodName(method))
	}

	v.SubmitEnabled = s.state == StateIdle && (s.flow == FlowMarketplaceRequest || len(s.methods) > 0)
	if s.order != nil {
		o := *s.order
		v.Order = &o
	}
	return v
}

// LastActive is the time of the last buyer interaction.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) finishRedirect(attempt uint64, captured domain.Draft, method domain.PaymentMethodID, auth Authorization, err error) {
	o, ok := s.settleRedirect(attempt, captured, method, auth, err)
	if !ok {
		return
	}
	// The payment is confirmed at this point, so abandoning the session must
	// not cut the placement short.
	_, _ = s.deliver(context.WithoutCancel(s.scope), o)
}

// settleRedirect applies the processor outcome and, on approval, assembles
// the order and moves the session to StatePlacing.
func (s *Session) settleRedirect(attempt uint64, captured domain.Draft, method domain.PaymentMethodID, auth Authorization, err error) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRedirecting || !s.redirect.Finish(attempt) {
		return domain.Order{}, false
	}
	defer s.redirect.Reset()

	if err == nil && !auth.Approved {
		err = ErrDeclined
		if auth.Reason != "" {
			err = errors.Join(ErrDeclined, errors.New(auth.Reason))
		}
	}
	if err != nil {
		s.lastErr = &domain.ProcessorError{MethodID: method, Err: err}
		s.recorder.SubmissionRejected("processor")
		s.logger.Printf("checkout: session=%s redirect failed method=%s error=%v", s.id, method, err)
		s.setState(StateIdle)
		return domain.Order{}, false
	}

	s.logger.Printf("checkout: session=%s redirect confirmed method=%s reference=%s", s.id, method, auth.Reference)
	return s.assemble(captured, method), true
}

// assemble builds the order, keeps it as pending and enters StatePlacing.
// Callers hold s.mu.
func (s *Session) assemble(draft domain.Draft, method domain.PaymentMethodID) domain.Order {
	in := order.Input{
		BuyerName:     draft.BuyerName,
		BuyerEmail:    draft.BuyerEmail,
		PaymentMethod: method,
		Currency:      s.settings.Currency,
	}
	if s.flow == FlowMarketplaceRequest {
		in.Shipping = trimShipping(draft.Shipping)
	}
	o := s.assembler.Assemble(in, s.snapshot)
	s.pending = &o
	s.setState(StatePlacing)
	return o
}

// deliver hands o to the sink. It must be called without s.mu held.
func (s *Session) deliver(ctx context.Context, o domain.Order) (domain.Order, error) {
	err := s.sink.PlaceOrder(ctx, o)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		perr := &domain.OrderPersistenceError{OrderID: o.ID, Err: err}
		s.recorder.SubmissionRejected("persistence")
		s.logger.Printf("checkout: session=%s place order_id=%s error=%v", s.id, o.ID, err)
		if s.state == StatePlacing {
			s.lastErr = perr
			s.setState(StateIdle)
		}
		return domain.Order{}, perr
	}

	s.pending = nil
	s.order = &o
	s.recorder.OrderPlaced(o.PaymentMethod, o.Status)
	s.logger.Printf("checkout: session=%s placed order_id=%s method=%s status=%s total=%s", s.id, o.ID, o.PaymentMethod, o.Status, o.Total.StringFixed(2))
	if s.state == StatePlacing {
		s.lastErr = nil
		s.stop()
		s.setState(StateCompleted)
	}
	return o, nil
}

func (s *Session) cancelRedirect(reason string) {
	method := s.redirect.Method()
	if !s.redirect.Cancel() {
		return
	}
	s.setState(StateIdle)
	s.recorder.RedirectCancelled(method)
	s.logger.Printf("checkout: session=%s redirect cancelled method=%s reason=%q", s.id, method, reason)
}

func (s *Session) editable() error {
	switch s.state {
	case StateRedirecting:
		return ErrRedirectInFlight
	case StatePlacing:
		return ErrPlacementInFlight
	case StateCompleted, StateAbandoned:
		return ErrSessionClosed
	default:
		return nil
	}
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	s.state = next
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session) touch() {
	s.lastActive.Store(s.now().UnixNano())
}

func (s *Session) methodName(id domain.PaymentMethodID) string {
	for _, m := range s.methods {
		if m.ID == id {
			return m.DisplayName
		}
	}
	return string(id)
}

func trimShipping(in *domain.ShippingDetails) *domain.ShippingDetails {
	if in == nil {
		return nil
	}
	return &domain.ShippingDetails{
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		PostalCode:  strings.TrimSpace(in.PostalCode),
	}
}

func rejectReason(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return "validation"
	}
	var serr *domain.SelectionError
	if errors.As(err, &serr) {
		return "selection"
	}
	return "other"
}
