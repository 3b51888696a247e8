package memory

import (
	"context"
	"sync"
	"time"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/ports/repository"
)

var _ repository.ReferralStage = (*ReferralStage)(nil)

type entry struct {
	code    string
	expires time.Time
}

// ReferralStage is the in-process referral holding area. State is owned
// by this object for the process lifetime, with an injected clock so
// expiry is testable; it is not persisted and is lost on restart, which
// is acceptable for the short first-contact-to-verification window.
type ReferralStage struct {
	mu      sync.Mutex
	entries map[int64]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewReferralStage(ttl time.Duration) *ReferralStage {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ReferralStage{
		entries: make(map[int64]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *ReferralStage) WithClock(now func() time.Time) *ReferralStage {
	s.now = now
	return s
}

// Start launches a janitor that sweeps expired entries until ctx ends.
// Lookups also check expiry lazily, so running the janitor is optional.
func (s *ReferralStage) Start(ctx context.Context) {
	go func() {
		t := time.NewTicker(s.ttl / 4)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.sweep()
			}
		}
	}()
}

func (s *ReferralStage) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.expires.Before(now) {
			delete(s.entries, id)
		}
	}
}

func (s *ReferralStage) Stage(ctx context.Context, tgID int64, code string) error {
	if code == "" {
		return domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// At most one pending code per user; a new deep link replaces it.
	s.entries[tgID] = entry{code: code, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *ReferralStage) Peek(ctx context.Context, tgID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tgID]
	if !ok {
		return "", domain.ErrReferralNotFound
	}
	if e.expires.Before(s.now()) {
		delete(s.entries, tgID)
		return "", domain.ErrReferralNotFound
	}
	return e.code, nil
}

func (s *ReferralStage) Clear(ctx context.Context, tgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, tgID)
	return nil
}
