package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"overcooked-cart/cart-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrNetwork      = errors.New("network error: unable to connect to server")
	ErrUnavailable  = errors.New("restaurant API temporarily unavailable")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the restaurant API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	http    HTTPClient
	breaker *gobreaker.CircuitBreaker[[]byte]
	menu    singleflight.Group
}

func NewClient(baseURL string, httpClient HTTPClient) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "restaurant-api",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("[GATEWAY] circuit %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// isBreakerSuccess counts only transport failures and 5xx answers against the circuit.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError
	}
	return false
}

type idempotencyKeyCtx struct{}

// WithIdempotencyKey attaches the key sent with the next order submission.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// IdempotencyKey returns the key attached by WithIdempotencyKey, if any.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyCtx{}).(string)
	return key
}

type requestOptions struct {
	token          string
	idempotencyKey string
}

func (c *Client) call(ctx context.Context, method, endpoint string, body any, opts requestOptions, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if opts.token != "" {
			req.Header.Set("Authorization", "Bearer "+opts.token)
		}
		if opts.idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", opts.idempotencyKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp, data)}
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func errorMessage(resp *http.Response, data []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/login/", body, requestOptions{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register/", reg, requestOptions{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Checkout submits an order under the context's idempotency key, or a fresh
// one when none is set. The client never retries it.
func (c *Client) Checkout(ctx context.Context, token string, req domain.CheckoutRequest) (*domain.OrderConfirmation, error) {
	var order domain.OrderConfirmation
	key := IdempotencyKey(ctx)
	if key == "" {
		key = uuid.NewString()
	}
	opts := requestOptions{token: token, idempotencyKey: key}
	if err := c.call(ctx, http.MethodPost, "/checkout/", req, opts, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Menu fetches the public menu. Concurrent callers share one request.
func (c *Client) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	v, err, _ := c.menu.Do("menu", func() (interface{}, error) {
		var raw json.RawMessage
		if err := c.call(ctx, http.MethodGet, "/menu/", nil, requestOptions{}, &raw); err != nil {
			return nil, err
		}
		return decodeMenu(raw)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.MenuItem), nil
}

// decodeMenu accepts a bare array or a {results|data} envelope.
func decodeMenu(raw json.RawMessage) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var envelope struct {
		Results []domain.MenuItem `json:"results"`
		Data    []domain.MenuItem `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	if envelope.Results != nil {
		return envelope.Results, nil
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return []domain.MenuItem{}, nil
}
