package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID          int             `json:"id"`
	Name        string          `json:"food_name"`
	Description string          `json:"food_description,omitempty"`
	Price       decimal.Decimal `json:"food_price"`
	Image       string          `json:"food_image,omitempty"`
	Available   *bool           `json:"is_available,omitempty"`
}

// IsAvailable treats a missing flag as available.
func (m MenuItem) IsAvailable() bool {
	return m.Available == nil || *m.Available
}

// LineItem is one cart entry. Name, price and image are captured when the
// item is first added and never re-synced with the menu.
type LineItem struct {
	ID        int             `json:"id"`
	Name      string          `json:"food_name"`
	UnitPrice decimal.Decimal `json:"food_price"`
	ImageRef  string          `json:"food_image,omitempty"`
	Quantity  int             `json:"quantity"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderLine struct {
	MenuItemID int `json:"menu_item_id"`
	Quantity   int `json:"quantity"`
}

type CheckoutRequest struct {
	Items               []OrderLine `json:"items"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
}

type OrderConfirmation struct {
	ID          int             `json:"id"`
	Status      string          `json:"status,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Message    string   `json:"message"`
	Severity   Severity `json:"type"`
	DurationMS int64    `json:"duration_ms"`
}

const (
	DirectiveShowLogin    = "show_login"
	DirectiveHideCheckout = "hide_checkout"
	DirectiveRedirect     = "redirect"
)

type Directive struct {
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
}

const (
	EventUserLoggedOut = "user_logged_out"
	EventOrderPlaced   = "order_placed"
)

type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	OrderID   int       `json:"order_id,omitempty"`
	ItemCount int       `json:"item_count,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AuthResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type CheckoutOutcome string

const (
	OutcomeSuccess       CheckoutOutcome = "success"
	OutcomeLoginRequired CheckoutOutcome = "login_required"
	OutcomeEmptyCart     CheckoutOutcome = "empty_cart"
	OutcomeBusy          CheckoutOutcome = "busy"
	OutcomeFailed        CheckoutOutcome = "failed"
)
