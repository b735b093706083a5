package service

import (
	"log"
	"sync"
	"time"

	"overcooked-cart/cart-svc/internal/domain"
)

const (
	DefaultNotificationDuration = 3 * time.Second
	defaultInboxLimit           = 50
)

// Inbox queues notifications and UI directives for one session until the
// page drains them. When full, the oldest entries are dropped.
type Inbox struct {
	mu            sync.Mutex
	notifications []domain.Notification
	directives    []domain.Directive
	limit         int
}

func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	return &Inbox{limit: limit}
}

func (i *Inbox) Notify(n domain.Notification) {
	if n.Severity == "" {
		n.Severity = domain.SeverityInfo
	}
	if n.DurationMS <= 0 {
		n.DurationMS = DefaultNotificationDuration.Milliseconds()
	}
	log.Printf("[NOTIFY] %s: %s", n.Severity, n.Message)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.notifications = append(i.notifications, n)
	if over := len(i.notifications) - i.limit; over > 0 {
		i.notifications = i.notifications[over:]
	}
}

func (i *Inbox) PromptLogin() {
	i.push(domain.Directive{Kind: domain.DirectiveShowLogin})
}

func (i *Inbox) HideCheckout() {
	i.push(domain.Directive{Kind: domain.DirectiveHideCheckout})
}

func (i *Inbox) Redirect(target string) {
	i.push(domain.Directive{Kind: domain.DirectiveRedirect, Target: target})
}

func (i *Inbox) push(d domain.Directive) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.directives = append(i.directives, d)
	if over := len(i.directives) - i.limit; over > 0 {
		i.directives = i.directives[over:]
	}
}

// Drain returns everything queued so far in arrival order and empties the inbox.
func (i *Inbox) Drain() ([]domain.Notification, []domain.Directive) {
	i.mu.Lock()
	defer i.mu.Unlock()
	notifications, directives := i.notifications, i.directives
	i.notifications, i.directives = nil, nil
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	if directives == nil {
		directives = []domain.Directive{}
	}
	return notifications, directives
}
