package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"overcooked-cart/cart-svc/internal/domain"
	"overcooked-cart/cart-svc/internal/mocks"
	"overcooked-cart/cart-svc/internal/service"
	"overcooked-cart/cart-svc/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func testMenu() []domain.MenuItem {
	soldOut := menuItem(3, "Pie", "5.00")
	soldOut.Available = boolPtr(false)
	return []domain.MenuItem{
		menuItem(1, "Tea", "1.00"),
		menuItem(2, "Cake", "3.00"),
		soldOut,
	}
}

func TestCatalog_MenuIsCached(t *testing.T) {
	source := mocks.NewMenuSource(t)
	source.On("Menu", mock.Anything).Return(testMenu(), nil).Once()

	catalog := service.NewCatalog(source, service.NewRetrier(1, 0), time.Minute)

	first, err := catalog.Menu(context.Background())
	require.NoError(t, err)
	second, err := catalog.Menu(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 3)
	assert.Equal(t, first, second)
}

func TestCatalog_RetriesMenuFetch(t *testing.T) {
	source := mocks.NewMenuSource(t)
	source.On("Menu", mock.Anything).Return(nil, errors.New("network error")).Twice()
	source.On("Menu", mock.Anything).Return(testMenu(), nil).Once()

	catalog := service.NewCatalog(source, service.NewRetrier(3, time.Millisecond), time.Minute)

	item, err := catalog.Find(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Cake", item.Name)
}

func TestCatalog_AddToCart(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		id              int
		menuErr         error
		expectedError   error
		expectedMessage string
		expectedLines   int
	}{
		{name: "success", id: 1, expectedMessage: "Tea added to cart!", expectedLines: 1},
		{name: "not_found", id: 42, expectedError: service.ErrItemNotFound, expectedMessage: "Item not found"},
		{name: "unavailable", id: 3, expectedError: service.ErrItemUnavailable, expectedMessage: "This item is currently unavailable"},
		{name: "menu_down", id: 1, menuErr: errors.New("network error"), expectedMessage: "Unable to load the menu. Please try again."},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			source := mocks.NewMenuSource(t)
			if testCase.menuErr != nil {
				source.On("Menu", mock.Anything).Return(nil, testCase.menuErr).Twice()
			} else {
				source.On("Menu", mock.Anything).Return(testMenu(), nil).Once()
			}
			catalog := service.NewCatalog(source, service.NewRetrier(2, 0), time.Minute)
			cart, inbox := newCart(t, storage.NewMemoryStore(), service.CartOptions{})

			err := catalog.AddToCart(ctx, cart, inbox, testCase.id)
			switch {
			case testCase.menuErr != nil:
				assert.ErrorIs(t, err, testCase.menuErr)
			default:
				assert.ErrorIs(t, err, testCase.expectedError)
			}
			assert.Len(t, cart.Items(), testCase.expectedLines)
			assert.Equal(t, testCase.expectedMessage, lastNotification(t, inbox).Message)
		})
	}
}

func TestRetry(t *testing.T) {
	attempts := 0
	result, err := service.Retry(context.Background(), service.NewRetrier(3, time.Millisecond), "flaky",
		func(context.Context) (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("try again")
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetry_GivesUp(t *testing.T) {
	attempts := 0
	lastErr := errors.New("still down")
	_, err := service.Retry(context.Background(), service.NewRetrier(2, 0), "down",
		func(context.Context) (int, error) {
			attempts++
			return 0, lastErr
		})

	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 2, attempts)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := service.Retry(ctx, service.NewRetrier(5, time.Hour), "slow",
		func(context.Context) (int, error) {
			attempts++
			cancel()
			return 0, errors.New("fail")
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestInbox(t *testing.T) {
	inbox := service.NewInbox(2)

	inbox.Notify(domain.Notification{Message: "one"})
	inbox.Notify(domain.Notification{Message: "two", Severity: domain.SeverityError, DurationMS: 500})
	inbox.Notify(domain.Notification{Message: "three"})
	inbox.PromptLogin()
	inbox.Redirect("dashboard.html")

	notifications, directives := inbox.Drain()
	require.Len(t, notifications, 2)
	assert.Equal(t, "two", notifications[0].Message)
	assert.Equal(t, int64(500), notifications[0].DurationMS)
	assert.Equal(t, "three", notifications[1].Message)
	assert.Equal(t, domain.SeverityInfo, notifications[1].Severity)
	assert.Equal(t, service.DefaultNotificationDuration.Milliseconds(), notifications[1].DurationMS)
	assert.Equal(t, []domain.Directive{
		{Kind: domain.DirectiveShowLogin},
		{Kind: domain.DirectiveRedirect, Target: "dashboard.html"},
	}, directives)

	notifications, directives = inbox.Drain()
	assert.NotNil(t, notifications)
	assert.Empty(t, notifications)
	assert.NotNil(t, directives)
	assert.Empty(t, directives)
}

func TestEventConsumer_ProcessEvent(t *testing.T) {
	ctx := context.Background()
	sessions := mocks.NewSessionClearer(t)
	consumer := service.NewEventConsumer(nil, sessions, "replica-a")

	tests := []struct {
		name         string
		event        domain.Event
		prepareMocks func()
	}{
		{
			name:  "logout_clears_cart",
			event: domain.Event{Type: domain.EventUserLoggedOut, SessionID: testSession},
			prepareMocks: func() {
				sessions.On("ClearCart", ctx, testSession).Return(nil).Once()
			},
		},
		{
			name:  "clear_error_is_logged",
			event: domain.Event{Type: domain.EventUserLoggedOut, SessionID: "broken"},
			prepareMocks: func() {
				sessions.On("ClearCart", ctx, "broken").Return(errors.New("redis down")).Once()
			},
		},
		{
			name:  "other_replica_logout_clears_cart",
			event: domain.Event{Type: domain.EventUserLoggedOut, SessionID: "s-2", Source: "replica-b"},
			prepareMocks: func() {
				sessions.On("ClearCart", ctx, "s-2").Return(nil).Once()
			},
		},
		{
			name:         "own_logout_ignored",
			event:        domain.Event{Type: domain.EventUserLoggedOut, SessionID: testSession, Source: "replica-a"},
			prepareMocks: func() {},
		},
		{
			name:         "other_event_ignored",
			event:        domain.Event{Type: domain.EventOrderPlaced, SessionID: testSession},
			prepareMocks: func() {},
		},
		{
			name:         "missing_session_ignored",
			event:        domain.Event{Type: domain.EventUserLoggedOut},
			prepareMocks: func() {},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			consumer.ProcessEvent(ctx, testCase.event)
		})
	}
}

func TestDefaultQRGenerator(t *testing.T) {
	generator := service.DefaultQRGenerator{BaseURL: "http://localhost:8080"}

	assert.Equal(t, "http://localhost:8080/review.html?order_id=42", generator.Link(42))

	png, err := generator.Generate(42)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), png[:8])
}
