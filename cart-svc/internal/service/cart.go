package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"overcooked-cart/cart-svc/internal/domain"
	"overcooked-cart/cart-svc/internal/storage"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem     = errors.New("menu item id is required")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrQuantityLimit   = errors.New("quantity exceeds the per-item limit")
	ErrCartFull        = errors.New("cart holds the maximum number of items")
	ErrCartLocked      = errors.New("cart is locked while the order is being placed")
)

// CartSlotKey names the store slot holding a session's cart.
func CartSlotKey(sessionID string) string {
	return "shopping_cart:" + sessionID
}

type CartOptions struct {
	// MaxQuantity caps a single line. Zero means unlimited.
	MaxQuantity int
	// MaxLines caps the number of distinct lines. Zero means unlimited.
	MaxLines       int
	PersistTimeout time.Duration
}

// CartView is the read-only snapshot handed to listeners.
type CartView struct {
	Items     []domain.LineItem
	Total     decimal.Decimal
	ItemCount int
}

type CartListener func(view CartView)

type Subscription uint64

type subscriber struct {
	id Subscription
	fn CartListener
}

// CartManager owns one cart. Every mutation is written through to the
// store and then announced to listeners before the next mutation starts.
type CartManager struct {
	store    SlotStore
	key      string
	notifier Notifier
	opts     CartOptions

	// opMu serialises mutate, persist and notify.
	opMu sync.Mutex

	mu     sync.RWMutex
	items  []domain.LineItem
	locked bool

	listenersMu sync.Mutex
	listeners   []subscriber
	nextID      Subscription
}

func NewCartManager(store SlotStore, key string, notifier Notifier, opts CartOptions) *CartManager {
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 2 * time.Second
	}
	c := &CartManager{
		store:    store,
		key:      key,
		notifier: notifier,
		opts:     opts,
	}
	c.items = c.load()
	return c
}

func (c *CartManager) load() []domain.LineItem {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.PersistTimeout)
	defer cancel()

	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[CART] load %s failed, starting empty: %v", c.key, err)
		}
		return nil
	}

	var stored []domain.LineItem
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("[CART] slot %s is not a valid cart, starting empty: %v", c.key, err)
		return nil
	}

	items := make([]domain.LineItem, 0, len(stored))
	for _, line := range stored {
		if line.ID <= 0 || line.Quantity < 1 {
			log.Printf("[CART] dropping invalid stored line id=%d quantity=%d", line.ID, line.Quantity)
			continue
		}
		items = append(items, line)
	}
	return items
}

func (c *CartManager) persist(items []domain.LineItem) {
	if items == nil {
		items = []domain.LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		log.Printf("[CART] encode %s failed: %v", c.key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.PersistTimeout)
	defer cancel()
	if err := c.store.Set(ctx, c.key, payload); err != nil {
		log.Printf("[CART] persist %s failed, keeping in-memory cart: %v", c.key, err)
	}
}

// commit persists the post-mutation snapshot and fans it out. Callers hold opMu.
func (c *CartManager) commit(items []domain.LineItem) {
	c.persist(items)
	c.notifyListeners(viewOf(items))
}

func (c *CartManager) AddItem(item domain.MenuItem, quantity int) error {
	if item.ID <= 0 {
		return ErrInvalidItem
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return ErrCartLocked
	}

	idx := indexOf(c.items, item.ID)
	if idx < 0 && c.opts.MaxLines > 0 && len(c.items) >= c.opts.MaxLines {
		c.mu.Unlock()
		c.warn(fmt.Sprintf("Your cart can hold at most %d different items", c.opts.MaxLines))
		return ErrCartFull
	}

	next := quantity
	if idx >= 0 {
		if quantity > math.MaxInt-c.items[idx].Quantity {
			c.mu.Unlock()
			c.warn(fmt.Sprintf("You cannot add more of %s", item.Name))
			return ErrQuantityLimit
		}
		next += c.items[idx].Quantity
	}
	if c.opts.MaxQuantity > 0 && next > c.opts.MaxQuantity {
		c.mu.Unlock()
		c.warn(fmt.Sprintf("You can order at most %d of %s", c.opts.MaxQuantity, item.Name))
		return ErrQuantityLimit
	}

	if idx >= 0 {
		c.items[idx].Quantity = next
	} else {
		c.items = append(c.items, domain.LineItem{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			ImageRef:  item.Image,
			Quantity:  quantity,
		})
	}
	snapshot := cloneItems(c.items)
	c.mu.Unlock()

	c.commit(snapshot)
	c.emit(item.Name+" added to cart!", domain.SeveritySuccess)
	return nil
}

// RemoveItem deletes the line if present. It persists and notifies even
// when nothing was removed.
func (c *CartManager) RemoveItem(id int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.removeLocked(id); err != nil {
		return err
	}
	c.emit("Item removed from cart", domain.SeverityInfo)
	return nil
}

func (c *CartManager) removeLocked(id int) error {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return ErrCartLocked
	}
	if idx := indexOf(c.items, id); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	snapshot := cloneItems(c.items)
	c.mu.Unlock()

	c.commit(snapshot)
	return nil
}

// UpdateQuantity sets a line's quantity. Non-positive quantities remove the
// line; unknown ids are ignored without persisting or notifying.
func (c *CartManager) UpdateQuantity(id, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(id)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return ErrCartLocked
	}
	idx := indexOf(c.items, id)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}
	if c.opts.MaxQuantity > 0 && quantity > c.opts.MaxQuantity {
		name := c.items[idx].Name
		c.mu.Unlock()
		c.warn(fmt.Sprintf("You can order at most %d of %s", c.opts.MaxQuantity, name))
		return ErrQuantityLimit
	}
	c.items[idx].Quantity = quantity
	snapshot := cloneItems(c.items)
	c.mu.Unlock()

	c.commit(snapshot)
	return nil
}

// Clear empties the cart. It is not subject to the checkout lock.
func (c *CartManager) Clear() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.clearLocked()
}

func (c *CartManager) clearLocked() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.commit(nil)
}

// beginSubmission snapshots the cart for a checkout request and, when lock
// is set, rejects add/remove/update until endSubmission.
func (c *CartManager) beginSubmission(lock bool) []domain.LineItem {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if lock {
		c.locked = true
	}
	return cloneItems(c.items)
}

func (c *CartManager) endSubmission(clear bool) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.locked = false
	c.mu.Unlock()

	if clear {
		c.clearLocked()
	}
}

func (c *CartManager) Items() []domain.LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.items)
}

func (c *CartManager) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return totalOf(c.items)
}

func (c *CartManager) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return countOf(c.items)
}

func (c *CartManager) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items) == 0
}

func (c *CartManager) Locked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locked
}

// View returns items, total and count taken under one lock.
func (c *CartManager) View() CartView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return viewOf(cloneItems(c.items))
}

// ToOrderFormat drops prices: the server is the price authority.
func (c *CartManager) ToOrderFormat() []domain.OrderLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orderLines(c.items)
}

// Subscribe registers a listener. Listeners run synchronously after each
// persisted mutation and must not mutate the cart themselves.
func (c *CartManager) Subscribe(fn CartListener) Subscription {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.nextID++
	c.listeners = append(c.listeners, subscriber{id: c.nextID, fn: fn})
	return c.nextID
}

func (c *CartManager) Unsubscribe(sub Subscription) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	for i, l := range c.listeners {
		if l.id == sub {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

func (c *CartManager) notifyListeners(view CartView) {
	c.listenersMu.Lock()
	listeners := make([]subscriber, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenersMu.Unlock()

	for _, l := range listeners {
		l.fn(CartView{Items: cloneItems(view.Items), Total: view.Total, ItemCount: view.ItemCount})
	}
}

func (c *CartManager) emit(message string, severity domain.Severity) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(domain.Notification{Message: message, Severity: severity})
}

func (c *CartManager) warn(message string) {
	c.emit(message, domain.SeverityWarning)
}

func indexOf(items []domain.LineItem, id int) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}

func totalOf(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.Subtotal())
	}
	return total
}

// countOf saturates at math.MaxInt.
func countOf(items []domain.LineItem) int {
	count := 0
	for _, line := range items {
		if line.Quantity > math.MaxInt-count {
			return math.MaxInt
		}
		count += line.Quantity
	}
	return count
}

func orderLines(items []domain.LineItem) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, line := range items {
		lines = append(lines, domain.OrderLine{MenuItemID: line.ID, Quantity: line.Quantity})
	}
	return lines
}

func viewOf(items []domain.LineItem) CartView {
	return CartView{Items: items, Total: totalOf(items), ItemCount: countOf(items)}
}
