package service

import (
	"context"

	"overcooked-cart/cart-svc/internal/domain"
)

// SlotStore is the durable key/value mirror of a cart. Get returns
// storage.ErrNotFound for a slot that was never written.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Notifier delivers user-facing messages. Implementations must not block.
type Notifier interface {
	Notify(n domain.Notification)
}

// UI receives the directives the checkout flow issues to the page.
type UI interface {
	PromptLogin()
	HideCheckout()
	Redirect(target string)
}

type Authenticator interface {
	IsAuthenticated() bool
}

type OrderSubmitter interface {
	SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.OrderConfirmation, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.Event) error
}

// SessionGateway is the slice of the restaurant API a session needs.
type SessionGateway interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResponse, error)
	Checkout(ctx context.Context, token string, req domain.CheckoutRequest) (*domain.OrderConfirmation, error)
}

type MenuSource interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
}

type CatalogInterface interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
	Find(ctx context.Context, id int) (*domain.MenuItem, error)
	AddToCart(ctx context.Context, cart *CartManager, notifier Notifier, id int) error
}

type SessionClearer interface {
	ClearCart(ctx context.Context, sessionID string) error
}

var (
	_ CatalogInterface = (*Catalog)(nil)
	_ SessionClearer   = (*Sessions)(nil)
	_ Notifier         = (*Inbox)(nil)
	_ UI               = (*Inbox)(nil)
	_ Authenticator    = (*Session)(nil)
	_ OrderSubmitter   = (*Session)(nil)
)
