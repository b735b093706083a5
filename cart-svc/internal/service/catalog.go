package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"overcooked-cart/cart-svc/internal/domain"
)

var (
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is currently unavailable")
)

// Catalog caches the restaurant menu so items can be added to a cart by id.
type Catalog struct {
	source  MenuSource
	retrier *Retrier
	ttl     time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	items     []domain.MenuItem
	fetchedAt time.Time
}

func NewCatalog(source MenuSource, retrier *Retrier, ttl time.Duration) *Catalog {
	if retrier == nil {
		retrier = NewRetrier(3, time.Second)
	}
	return &Catalog{source: source, retrier: retrier, ttl: ttl, now: time.Now}
}

func (c *Catalog) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	c.mu.RLock()
	if c.items != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		items := append([]domain.MenuItem(nil), c.items...)
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	items, err := Retry(ctx, c.retrier, "menu", c.source.Menu)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.MenuItem{}
	}

	c.mu.Lock()
	c.items = items
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return append([]domain.MenuItem(nil), items...), nil
}

func (c *Catalog) Find(ctx context.Context, id int) (*domain.MenuItem, error) {
	items, err := c.Menu(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			item := items[i]
			return &item, nil
		}
	}
	return nil, ErrItemNotFound
}

// AddToCart adds one unit of the menu item with the given id.
func (c *Catalog) AddToCart(ctx context.Context, cart *CartManager, notifier Notifier, id int) error {
	item, err := c.Find(ctx, id)
	switch {
	case errors.Is(err, ErrItemNotFound):
		log.Printf("[CATALOG] menu item not found: %d", id)
		notifier.Notify(domain.Notification{Message: "Item not found", Severity: domain.SeverityError})
		return err
	case err != nil:
		log.Printf("[CATALOG] menu unavailable: %v", err)
		notifier.Notify(domain.Notification{Message: "Unable to load the menu. Please try again.", Severity: domain.SeverityError})
		return err
	}

	if !item.IsAvailable() {
		notifier.Notify(domain.Notification{Message: "This item is currently unavailable", Severity: domain.SeverityWarning})
		return ErrItemUnavailable
	}
	return cart.AddItem(*item, 1)
}
