package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"overcooked-cart/cart-svc/internal/domain"
	"overcooked-cart/cart-svc/internal/gateway"

	"github.com/google/uuid"
)

const (
	MsgLoginRequired  = "Please login to place an order"
	MsgEmptyCart      = "Your cart is empty"
	MsgCheckoutBusy   = "Your order is already being placed"
	MsgOrderPlaced    = "Order placed and delivered successfully!"
	MsgCheckoutFailed = "Failed to place order. Please try again."
)

type CheckoutState int

const (
	StateIdle CheckoutState = iota
	StatePreconditionCheck
	StateSubmitting
)

func (s CheckoutState) String() string {
	switch s {
	case StatePreconditionCheck:
		return "precondition_check"
	case StateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

type CheckoutOptions struct {
	RedirectDelay  time.Duration
	RedirectTarget string
	// LockCart rejects add/remove/update while the request is in flight.
	LockCart bool
}

// CheckoutResult is the outcome of one attempt. Err carries the submission
// error for diagnostics and is never shown to the user.
type CheckoutResult struct {
	Outcome domain.CheckoutOutcome
	Message string
	Request *domain.CheckoutRequest
	Order   *domain.OrderConfirmation
	Err     error
}

func (r CheckoutResult) OK() bool {
	return r.Outcome == domain.OutcomeSuccess
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type Checkout struct {
	sessionID string
	cart      *CartManager
	auth      Authenticator
	orders    OrderSubmitter
	notifier  Notifier
	ui        UI
	publisher EventPublisher
	opts      CheckoutOptions
	schedule  Scheduler

	mu    sync.Mutex
	state CheckoutState

	// pendingKey is reused while the same request keeps failing without a
	// definite answer from the backend.
	pendingKey     string
	pendingRequest string
}

func NewCheckout(sessionID string, cart *CartManager, auth Authenticator, orders OrderSubmitter,
	notifier Notifier, ui UI, publisher EventPublisher, opts CheckoutOptions) *Checkout {
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = 2 * time.Second
	}
	if opts.RedirectTarget == "" {
		opts.RedirectTarget = "dashboard.html"
	}
	return &Checkout{
		sessionID: sessionID,
		cart:      cart,
		auth:      auth,
		orders:    orders,
		notifier:  notifier,
		ui:        ui,
		publisher: publisher,
		opts:      opts,
		schedule:  afterFunc,
	}
}

// WithScheduler replaces the timer used for the post-order redirect.
func (c *Checkout) WithScheduler(s Scheduler) *Checkout {
	c.schedule = s
	return c
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Checkout) setState(s CheckoutState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run performs one checkout attempt. Both gates are evaluated on every
// call; the emptiness gate runs on the snapshot that becomes the request.
func (c *Checkout) Run(ctx context.Context, specialInstructions string) CheckoutResult {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return c.reject(domain.OutcomeBusy, MsgCheckoutBusy)
	}
	c.state = StatePreconditionCheck
	c.mu.Unlock()
	defer c.setState(StateIdle)

	if !c.auth.IsAuthenticated() {
		c.ui.PromptLogin()
		return c.reject(domain.OutcomeLoginRequired, MsgLoginRequired)
	}

	items := c.cart.beginSubmission(c.opts.LockCart)
	if len(items) == 0 {
		c.cart.endSubmission(false)
		return c.reject(domain.OutcomeEmptyCart, MsgEmptyCart)
	}

	req := BuildCheckoutRequest(items, specialInstructions)
	c.setState(StateSubmitting)

	fingerprint := requestFingerprint(req)
	key := c.idempotencyKey(fingerprint)

	order, err := c.orders.SubmitCheckout(gateway.WithIdempotencyKey(ctx, key), req)
	c.settleKey(fingerprint, key, err)
	if err != nil {
		c.cart.endSubmission(false)
		log.Printf("[CHECKOUT] session %s: submission failed: %v", c.sessionID, err)
		c.notify(MsgCheckoutFailed, domain.SeverityError)
		return CheckoutResult{Outcome: domain.OutcomeFailed, Message: MsgCheckoutFailed, Request: &req, Err: err}
	}

	if order == nil {
		order = &domain.OrderConfirmation{}
	}

	c.cart.endSubmission(true)
	c.ui.HideCheckout()
	c.notify(MsgOrderPlaced, domain.SeveritySuccess)
	c.publishPlaced(ctx, order, countOf(items))

	target := c.opts.RedirectTarget
	c.schedule(c.opts.RedirectDelay, func() { c.ui.Redirect(target) })

	log.Printf("[CHECKOUT] session %s: order %d placed with %d lines", c.sessionID, order.ID, len(req.Items))
	return CheckoutResult{Outcome: domain.OutcomeSuccess, Message: MsgOrderPlaced, Request: &req, Order: order}
}

// IdempotencyKey is the key the next submission of the current pending
// request would reuse, or "" when none is pending.
func (c *Checkout) IdempotencyKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingKey
}

func (c *Checkout) idempotencyKey(fingerprint string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingKey != "" && c.pendingRequest == fingerprint {
		return c.pendingKey
	}
	return uuid.NewString()
}

// settleKey keeps the key only when the backend may have committed the order.
func (c *Checkout) settleKey(fingerprint, key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil && outcomeUnknown(err) {
		c.pendingKey, c.pendingRequest = key, fingerprint
		return
	}
	c.pendingKey, c.pendingRequest = "", ""
}

func outcomeUnknown(err error) bool {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return false
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

func requestFingerprint(req domain.CheckoutRequest) string {
	raw, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (c *Checkout) reject(outcome domain.CheckoutOutcome, message string) CheckoutResult {
	c.notify(message, domain.SeverityWarning)
	return CheckoutResult{Outcome: outcome, Message: message}
}

func (c *Checkout) notify(message string, severity domain.Severity) {
	if c.notifier != nil {
		c.notifier.Notify(domain.Notification{Message: message, Severity: severity})
	}
}

func (c *Checkout) publishPlaced(ctx context.Context, order *domain.OrderConfirmation, itemCount int) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishEvent(ctx, domain.Event{
		Type:      domain.EventOrderPlaced,
		SessionID: c.sessionID,
		OrderID:   order.ID,
		ItemCount: itemCount,
		Timestamp: time.Now(),
	}); err != nil {
		log.Printf("[CHECKOUT] publish order_placed failed: %v", err)
	}
}

// BuildCheckoutRequest projects line items into the wire request. Blank
// instructions are left out rather than sent as an empty string.
func BuildCheckoutRequest(items []domain.LineItem, specialInstructions string) domain.CheckoutRequest {
	return domain.CheckoutRequest{
		Items:               orderLines(items),
		SpecialInstructions: strings.TrimSpace(specialInstructions),
	}
}
