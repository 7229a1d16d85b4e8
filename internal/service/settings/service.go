package settings

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront-checkout/internal/cache"
	"storefront-checkout/internal/domain"
	settingsrepo "storefront-checkout/internal/repository/settings"

	"golang.org/x/sync/singleflight"
)

// Defaults is applied when no merchant document is stored.
type Defaults struct {
	Currency string
	Locale   string
	// RedirectDelay overrides the stored delay when positive.
	RedirectDelay time.Duration
}

// Service resolves the settings snapshot for one merchant key: cache first,
// then the repository, then built-in defaults.
type Service struct {
	key      string
	repo     settingsrepo.Repository
	cache    cache.SettingsCache
	defaults Defaults
	logger   *log.Logger
	sfg      singleflight.Group
}

// New builds a Service. repo and c may be nil.
func New(key string, repo settingsrepo.Repository, c cache.SettingsCache, defaults Defaults, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{key: key, repo: repo, cache: c, defaults: defaults, logger: logger}
}

// Snapshot returns a copy of the current settings. Concurrent callers share
// one load, which is detached from any single caller's cancellation.
func (s *Service) Snapshot(ctx context.Context) (domain.Settings, error) {
	ch := s.sfg.DoChan(s.key, func() (interface{}, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return domain.Settings{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Settings{}, res.Err
		}
		return s.apply(res.Val.(domain.Settings)), nil
	}
}

// Save stores settings and drops the cached copy.
func (s *Service) Save(ctx context.Context, st domain.Settings) error {
	if s.repo == nil {
		return errors.New("settings repository not configured")
	}
	if err := s.repo.Upsert(ctx, s.key, st); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.key); err != nil {
			s.logger.Printf("settings: invalidate key=%s error=%v", s.key, err)
		}
	}
	return nil
}

func (s *Service) load(ctx context.Context) (domain.Settings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, s.key)
		if err == nil {
			return *cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("settings: cache get key=%s error=%v", s.key, err)
		}
	}

	if s.repo == nil {
		return domain.DefaultSettings(s.defaults.Currency, s.defaults.Locale), nil
	}
	stored, err := s.repo.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Printf("settings: key=%s not stored, using defaults", s.key)
		return domain.DefaultSettings(s.defaults.Currency, s.defaults.Locale), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.key, *stored); err != nil {
			s.logger.Printf("settings: cache set key=%s error=%v", s.key, err)
		}
	}
	return *stored, nil
}

func (s *Service) apply(st domain.Settings) domain.Settings {
	st = st.Clone()
	if st.Currency == "" {
		st.Currency = s.defaults.Currency
	}
	if st.Locale == "" {
		st.Locale = s.defaults.Locale
	}
	if s.defaults.RedirectDelay > 0 {
		st.RedirectDelayMS = s.defaults.RedirectDelay.Milliseconds()
	}
	return st
}
