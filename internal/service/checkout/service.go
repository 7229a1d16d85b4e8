package checkout

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/i18n"
	"storefront-checkout/internal/service/order"

	"github.com/google/uuid"
)

// SettingsProvider supplies the configuration snapshot a session starts with.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (domain.Settings, error)
}

// Service starts checkout sessions and keeps them until they expire.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session

	settings     SettingsProvider
	assembler    *order.Assembler
	sink         OrderSink
	newProcessor func(domain.Settings) Processor
	recorder     Recorder
	logger       *log.Logger
	ttl          time.Duration
	now          func() time.Time
}

type Option func(*Service)

// WithProcessor replaces the simulated redirect processor.
func WithProcessor(fn func(domain.Settings) Processor) Option {
	return func(s *Service) { s.newProcessor = fn }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithSessionTTL sets how long an idle session is kept before Sweep abandons it.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(settings SettingsProvider, sink OrderSink, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Service{
		sessions:  make(map[string]*Session),
		settings:  settings,
		assembler: order.NewAssembler(),
		sink:      sink,
		newProcessor: func(st domain.Settings) Processor {
			return SimulatedProcessor{Delay: st.RedirectDelay()}
		},
		recorder: nopRecorder{},
		logger:   logger,
		ttl:      30 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a checkout for the given cart. currentUser, when present,
// prefills the buyer identity.
func (s *Service) Start(ctx context.Context, items []domain.CartItem, currentUser *domain.CurrentUser) (*Session, error) {
	snapshot, err := domain.NewCartSnapshot(items)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = settings.Clone()
	tr, err := i18n.New(settings.Locale, settings.Currency)
	if err != nil {
		return nil, fmt.Errorf("init translator: %w", err)
	}

	sess := newSession(uuid.NewString(), snapshot, settings, tr, currentUser, sessionDeps{
		assembler: s.assembler,
		sink:      s.sink,
		processor: s.newProcessor(settings),
		recorder:  s.recorder,
		logger:    s.logger,
		now:       s.now,
	})

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	s.logger.Printf("checkout: session=%s started flow=%s items=%d methods=%d", sess.ID(), sess.Flow(), snapshot.Len(), len(sess.methods))
	return sess, nil
}

func (s *Service) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// Len reports how many sessions are open.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Abandon is the "back to store" exit: it cancels any pending redirect and
// forgets the session.
func (s *Service) Abandon(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	sess.Abandon()
	return nil
}

// Sweep abandons and drops sessions idle for longer than the TTL.
func (s *Service) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Abandon()
	}
	if len(expired) > 0 {
		s.logger.Printf("checkout: swept %d idle sessions", len(expired))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Close abandons every open session.
func (s *Service) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Abandon()
	}
}
