package service

import (
	"context"
	"log"
	"sync"
	"time"

	"overcooked-cart/cart-svc/internal/domain"

	"github.com/google/uuid"
)

// SessionBundle is everything one browser session owns.
type SessionBundle struct {
	ID       string
	Cart     *CartManager
	Session  *Session
	Checkout *Checkout
	Inbox    *Inbox
}

type SessionsConfig struct {
	Cart       CartOptions
	Checkout   CheckoutOptions
	InboxLimit int
	// IdleTTL drops bundles unused for this long. Zero keeps them forever.
	IdleTTL time.Duration
	// MaxBundles caps the loaded bundles; the least recently used idle one
	// is dropped to make room. Zero means no cap.
	MaxBundles int
}

type sessionEntry struct {
	bundle   *SessionBundle
	lastUsed time.Time
}

// Sessions builds and keeps one bundle per session id. It is the only owner
// of cart managers in the process. Dropped bundles are rebuilt from the
// store on next use.
type Sessions struct {
	store     SlotStore
	api       SessionGateway
	publisher EventPublisher
	cfg       SessionsConfig
	scheduler Scheduler
	instance  string
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func NewSessions(store SlotStore, api SessionGateway, publisher EventPublisher, cfg SessionsConfig) *Sessions {
	return &Sessions{
		store:     store,
		api:       api,
		publisher: publisher,
		cfg:       cfg,
		instance:  uuid.NewString(),
		now:       time.Now,
		entries:   make(map[string]*sessionEntry),
	}
}

// WithScheduler sets the redirect timer for every bundle created afterwards.
func (s *Sessions) WithScheduler(scheduler Scheduler) *Sessions {
	s.scheduler = scheduler
	return s
}

// WithClock replaces the clock used for idle tracking.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

// Instance identifies this process in the events it publishes.
func (s *Sessions) Instance() string {
	return s.instance
}

// Len reports how many bundles are loaded.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get returns the bundle for id, loading its cart and token on first use.
func (s *Sessions) Get(id string) *SessionBundle {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.entries[id]; ok {
		entry.lastUsed = now
		return entry.bundle
	}

	if s.cfg.MaxBundles > 0 && len(s.entries) >= s.cfg.MaxBundles {
		s.evictOldestLocked()
	}

	bundle := s.build(id)
	s.entries[id] = &sessionEntry{bundle: bundle, lastUsed: now}
	return bundle
}

func (s *Sessions) build(id string) *SessionBundle {
	inbox := NewInbox(s.cfg.InboxLimit)
	cart := NewCartManager(s.store, CartSlotKey(id), inbox, s.cfg.Cart)
	session := NewSession(id, s.store, s.api)
	checkout := NewCheckout(id, cart, session, session, inbox, inbox, s.publisher, s.cfg.Checkout)
	if s.scheduler != nil {
		checkout.WithScheduler(s.scheduler)
	}

	session.OnLogout(cart.Clear)
	cart.Subscribe(func(view CartView) {
		log.Printf("[CART] session %s: %d items, total %s", id, view.ItemCount, view.Total.StringFixed(2))
	})

	return &SessionBundle{ID: id, Cart: cart, Session: session, Checkout: checkout, Inbox: inbox}
}

// evictOldestLocked drops the least recently used bundle that is not placing an order.
func (s *Sessions) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, entry := range s.entries {
		if entry.bundle.Checkout.State() != StateIdle {
			continue
		}
		if oldestID == "" || entry.lastUsed.Before(oldest) {
			oldestID, oldest = id, entry.lastUsed
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}

// Prune drops bundles idle for longer than IdleTTL and reports how many went.
func (s *Sessions) Prune() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.cfg.IdleTTL)
	pruned := 0
	for id, entry := range s.entries {
		if entry.lastUsed.Before(cutoff) && entry.bundle.Checkout.State() == StateIdle {
			delete(s.entries, id)
			pruned++
		}
	}
	return pruned
}

// RunJanitor prunes idle bundles every interval until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Prune(); n > 0 {
				log.Printf("[SESSIONS] pruned %d idle sessions", n)
			}
		}
	}
}

func (s *Sessions) lookup(id string) (*SessionBundle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return entry.bundle, true
}

// Logout ends the session and announces it so other replicas drop their copy.
func (s *Sessions) Logout(ctx context.Context, bundle *SessionBundle) {
	bundle.Session.Logout(ctx)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, domain.Event{
		Type:      domain.EventUserLoggedOut,
		SessionID: bundle.ID,
		Source:    s.instance,
		Timestamp: s.now(),
	}); err != nil {
		log.Printf("[SESSIONS] publish user_logged_out failed: %v", err)
	}
}

// ClearCart handles a logout announced by another component. Loaded
// sessions are logged out in memory; otherwise the stored slot is dropped.
func (s *Sessions) ClearCart(ctx context.Context, sessionID string) error {
	if bundle, ok := s.lookup(sessionID); ok {
		bundle.Session.Logout(ctx)
		return nil
	}
	for _, key := range []string{
		CartSlotKey(sessionID),
		accessTokenKey(sessionID),
		refreshTokenKey(sessionID),
		currentUserKey(sessionID),
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
