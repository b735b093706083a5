package tests

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"overcooked-cart/api-gateway/internal/gateway"
	"overcooked-cart/api-gateway/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func okResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func TestGateway_HealthCheck(t *testing.T) {
	gw := gateway.NewGateway(gateway.Config{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	gw.HealthCheck(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "api-gateway", body["service"])
}

func TestGateway_RouteHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		expectedTo string
	}{
		{name: "cart", method: http.MethodGet, path: "/api/cart", expectedTo: "http://cart-svc/api/cart"},
		{name: "cart_item", method: http.MethodPut, path: "/api/cart/items/5", expectedTo: "http://cart-svc/api/cart/items/5"},
		{name: "checkout", method: http.MethodPost, path: "/api/cart/checkout", expectedTo: "http://cart-svc/api/cart/checkout"},
		{name: "inbox", method: http.MethodGet, path: "/api/inbox", expectedTo: "http://cart-svc/api/inbox"},
		{name: "login", method: http.MethodPost, path: "/api/session/login", expectedTo: "http://cart-svc/api/session/login"},
		{name: "order_qrcode", method: http.MethodGet, path: "/api/orders/7/qrcode", expectedTo: "http://cart-svc/api/orders/7/qrcode"},
		{name: "menu", method: http.MethodGet, path: "/api/menu/", expectedTo: "http://backend/api/menu/"},
		{name: "orders_list", method: http.MethodGet, path: "/api/orders/", expectedTo: "http://backend/api/orders/"},
		{name: "cartography_is_backend", method: http.MethodGet, path: "/api/cartography", expectedTo: "http://backend/api/cartography"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockClient := mocks.NewHTTPClient(t)
			gw := gateway.NewGateway(gateway.Config{
				CartSvcURL: "http://cart-svc",
				BackendURL: "http://backend",
			}, mockClient)

			mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
				return req.Method == testCase.method && req.URL.String() == testCase.expectedTo
			})).Return(okResponse(http.StatusOK, `{}`), nil).Once()

			req := httptest.NewRequest(testCase.method, testCase.path, nil)
			rr := httptest.NewRecorder()

			gw.RouteHandler(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestGateway_RouteHandler_ForwardsSessionHeader(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	gw := gateway.NewGateway(gateway.Config{CartSvcURL: "http://cart-svc"}, mockClient)

	upstream := okResponse(http.StatusCreated, `{"outcome":"success"}`)
	upstream.Header.Set("X-Session-ID", "abc")
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("X-Session-ID") == "abc" && req.URL.RawQuery == "source=menu"
	})).Return(upstream, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/cart/checkout?source=menu", strings.NewReader(`{}`))
	req.Header.Set("X-Session-ID", "abc")
	rr := httptest.NewRecorder()

	gw.RouteHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "abc", rr.Header().Get("X-Session-ID"))
	assert.Contains(t, rr.Body.String(), "success")
}

func TestGateway_RouteHandler_NoBackend(t *testing.T) {
	gw := gateway.NewGateway(gateway.Config{CartSvcURL: "http://cart-svc"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rr := httptest.NewRecorder()

	gw.RouteHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGateway_RouteHandler_ProxyError(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	gw := gateway.NewGateway(gateway.Config{
		CartSvcURL: "http://invalid",
	}, mockClient)

	mockClient.On("Do", mock.Anything).Return(nil, errors.New("connection failed")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()

	gw.RouteHandler(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
