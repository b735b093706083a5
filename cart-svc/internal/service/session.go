package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"overcooked-cart/cart-svc/internal/domain"
	"overcooked-cart/cart-svc/internal/gateway"
	"overcooked-cart/cart-svc/internal/storage"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

func accessTokenKey(sessionID string) string  { return "access_token:" + sessionID }
func refreshTokenKey(sessionID string) string { return "refresh_token:" + sessionID }
func currentUserKey(sessionID string) string  { return "current_user:" + sessionID }

// Session holds the bearer token of one browser session and attaches it to
// calls against the restaurant API.
type Session struct {
	id    string
	store SlotStore
	api   SessionGateway

	mu       sync.RWMutex
	token    string
	user     *domain.User
	onLogout []func()
}

func NewSession(id string, store SlotStore, api SessionGateway) *Session {
	s := &Session{id: id, store: store, api: api}
	s.restore()
	return s
}

func (s *Session) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	token, err := s.store.Get(ctx, accessTokenKey(s.id))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[SESSION] %s: restore token failed: %v", s.id, err)
		}
		return
	}
	s.token = string(token)

	if raw, err := s.store.Get(ctx, currentUserKey(s.id)); err == nil {
		var user domain.User
		if err := json.Unmarshal(raw, &user); err == nil {
			s.user = &user
		}
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// OnLogout registers fn to run after an explicit logout.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.establish(ctx, resp)
	return &resp.User, nil
}

func (s *Session) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if reg.Password != reg.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	resp, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.establish(ctx, resp)
	return &resp.User, nil
}

func (s *Session) establish(ctx context.Context, resp *domain.AuthResponse) {
	s.mu.Lock()
	s.token = resp.Tokens.Access
	user := resp.User
	s.user = &user
	s.mu.Unlock()

	s.write(ctx, accessTokenKey(s.id), []byte(resp.Tokens.Access))
	s.write(ctx, refreshTokenKey(s.id), []byte(resp.Tokens.Refresh))
	if raw, err := json.Marshal(resp.User); err == nil {
		s.write(ctx, currentUserKey(s.id), raw)
	}
}

// Logout forgets the credentials and runs the logout hooks, which clear the cart.
func (s *Session) Logout(ctx context.Context) {
	s.forget(ctx)

	s.mu.RLock()
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.RUnlock()

	for _, hook := range hooks {
		hook()
	}
}

// Expire drops a token the backend rejected. The cart is kept.
func (s *Session) Expire(ctx context.Context) {
	log.Printf("[SESSION] %s: token rejected by backend, login required", s.id)
	s.forget(ctx)
}

func (s *Session) forget(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	for _, key := range []string{accessTokenKey(s.id), refreshTokenKey(s.id), currentUserKey(s.id)} {
		if err := s.store.Delete(ctx, key); err != nil {
			log.Printf("[SESSION] %s: delete %s failed: %v", s.id, key, err)
		}
	}
}

func (s *Session) write(ctx context.Context, key string, value []byte) {
	if err := s.store.Set(ctx, key, value); err != nil {
		log.Printf("[SESSION] %s: persist %s failed: %v", s.id, key, err)
	}
}

// SubmitCheckout sends the order with the session's token. A 401 expires
// the session.
func (s *Session) SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.OrderConfirmation, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	order, err := s.api.Checkout(ctx, token, req)
	if errors.Is(err, gateway.ErrUnauthorized) {
		s.Expire(ctx)
	}
	return order, err
}
