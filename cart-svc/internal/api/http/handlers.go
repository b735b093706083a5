package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"overcooked-cart/cart-svc/internal/domain"
	"overcooked-cart/cart-svc/internal/gateway"
	"overcooked-cart/cart-svc/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const SessionHeader = "X-Session-ID"

type Handler struct {
	Sessions   *service.Sessions
	Catalog    service.CatalogInterface
	QR         service.QRGenerator
	APIBaseURL string
}

func NewHandler(sessions *service.Sessions, catalog service.CatalogInterface, qr service.QRGenerator, apiBaseURL string) *Handler {
	return &Handler{Sessions: sessions, Catalog: catalog, QR: qr, APIBaseURL: apiBaseURL}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/items", h.addItem).Methods("POST")
	r.HandleFunc("/api/cart/items/{id}", h.addMenuItem).Methods("POST")
	r.HandleFunc("/api/cart/items/{id}", h.updateQuantity).Methods("PUT")
	r.HandleFunc("/api/cart/items/{id}", h.removeItem).Methods("DELETE")
	r.HandleFunc("/api/cart/checkout", h.checkout).Methods("POST")

	r.HandleFunc("/api/inbox", h.drainInbox).Methods("GET")

	r.HandleFunc("/api/session/login", h.login).Methods("POST")
	r.HandleFunc("/api/session/register", h.register).Methods("POST")
	r.HandleFunc("/api/session/logout", h.logout).Methods("POST")

	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")
}

// session resolves the caller's bundle. A missing or malformed id gets a
// fresh one, echoed back in the response header.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *service.SessionBundle {
	id := uuid.NewString()
	if parsed, err := uuid.Parse(strings.TrimSpace(r.Header.Get(SessionHeader))); err == nil {
		id = parsed.String()
	}
	w.Header().Set(SessionHeader, id)
	return h.Sessions.Get(id)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "cart-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type lineResponse struct {
	ID        int             `json:"id"`
	Name      string          `json:"food_name"`
	UnitPrice decimal.Decimal `json:"food_price"`
	Price     string          `json:"price_display"`
	Quantity  int             `json:"quantity"`
	Subtotal  string          `json:"subtotal_display"`
	ImageURL  string          `json:"image_url"`
}

type cartResponse struct {
	Items     []lineResponse  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	TotalText string          `json:"total_display"`
	ItemCount int             `json:"item_count"`
	Empty     bool            `json:"empty"`
	Locked    bool            `json:"locked"`
}

func (h *Handler) cartBody(cart *service.CartManager) cartResponse {
	view := cart.View()
	lines := make([]lineResponse, 0, len(view.Items))
	for _, line := range view.Items {
		lines = append(lines, lineResponse{
			ID:        line.ID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Price:     domain.FormatPrice(line.UnitPrice),
			Quantity:  line.Quantity,
			Subtotal:  domain.FormatPrice(line.Subtotal()),
			ImageURL:  domain.ResolveImageURL(h.APIBaseURL, line.ImageRef),
		})
	}
	return cartResponse{
		Items:     lines,
		Total:     view.Total,
		TotalText: domain.FormatPrice(view.Total),
		ItemCount: view.ItemCount,
		Empty:     len(lines) == 0,
		Locked:    cart.Locked(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)
	writeJSON(w, http.StatusOK, h.cartBody(bundle.Cart))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)
	bundle.Cart.Clear()
	bundle.Inbox.Notify(domain.Notification{Message: "Cart cleared", Severity: domain.SeverityInfo})
	writeJSON(w, http.StatusOK, h.cartBody(bundle.Cart))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)

	var payload struct {
		domain.MenuItem
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	quantity := 1
	if payload.Quantity != nil {
		quantity = *payload.Quantity
	}

	if err := bundle.Cart.AddItem(payload.MenuItem, quantity); err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartBody(bundle.Cart))
}

func (h *Handler) addMenuItem(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	if err := h.Catalog.AddToCart(r.Context(), bundle.Cart, bundle.Inbox, id); err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartBody(bundle.Cart))
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Quantity == nil {
		http.Error(w, "Missing quantity", http.StatusBadRequest)
		return
	}

	if err := bundle.Cart.UpdateQuantity(id, *payload.Quantity); err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartBody(bundle.Cart))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	if err := bundle.Cart.RemoveItem(id); err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartBody(bundle.Cart))
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidItem), errors.Is(err, service.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrCartLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrQuantityLimit), errors.Is(err, service.ErrCartFull), errors.Is(err, service.ErrItemUnavailable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, gateway.ErrNetwork), errors.Is(err, gateway.ErrUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("[API] unexpected cart error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type checkoutResponse struct {
	Outcome domain.CheckoutOutcome    `json:"outcome"`
	Message string                    `json:"message"`
	Order   *domain.OrderConfirmation `json:"order,omitempty"`
	QRCode  string                    `json:"qr_code_url,omitempty"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)

	var payload struct {
		SpecialInstructions string `json:"special_instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	result := bundle.Checkout.Run(r.Context(), payload.SpecialInstructions)
	resp := checkoutResponse{Outcome: result.Outcome, Message: result.Message, Order: result.Order}
	if result.OK() && result.Order.ID > 0 {
		resp.QRCode = "/api/orders/" + strconv.Itoa(result.Order.ID) + "/qrcode"
	}
	writeJSON(w, checkoutStatus(result.Outcome), resp)
}

func checkoutStatus(outcome domain.CheckoutOutcome) int {
	switch outcome {
	case domain.OutcomeSuccess:
		return http.StatusCreated
	case domain.OutcomeLoginRequired:
		return http.StatusUnauthorized
	case domain.OutcomeEmptyCart:
		return http.StatusUnprocessableEntity
	case domain.OutcomeBusy:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) drainInbox(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)
	notifications, directives := bundle.Inbox.Drain()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"directives":    directives,
	})
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		http.Error(w, "Missing email or password", http.StatusBadRequest)
		return
	}

	user, err := bundle.Session.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeAuthError(w, bundle, err)
		return
	}
	bundle.Inbox.Notify(domain.Notification{Message: "Login successful!", Severity: domain.SeveritySuccess})
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: user})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)

	var reg domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	user, err := bundle.Session.Register(r.Context(), reg)
	if err != nil {
		h.writeAuthError(w, bundle, err)
		return
	}
	bundle.Inbox.Notify(domain.Notification{Message: "Registration successful!", Severity: domain.SeveritySuccess})
	writeJSON(w, http.StatusCreated, sessionResponse{Authenticated: true, User: user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	bundle := h.session(w, r)
	h.Sessions.Logout(r.Context(), bundle)
	bundle.Inbox.Notify(domain.Notification{Message: "Logged out successfully", Severity: domain.SeverityInfo})
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
}

// writeAuthError reports a failed login or registration to the caller and
// queues the same message for the page.
func (h *Handler) writeAuthError(w http.ResponseWriter, bundle *service.SessionBundle, err error) {
	status := http.StatusInternalServerError
	message := "Authentication failed"

	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		status, message = http.StatusBadRequest, "Passwords do not match"
	case errors.Is(err, gateway.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		status, message = apiErr.Status, apiErr.Message
	case errors.Is(err, gateway.ErrNetwork):
		status, message = http.StatusBadGateway, "Network error: Unable to connect to server"
	case errors.Is(err, gateway.ErrUnavailable):
		status, message = http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again."
	case errors.As(err, &apiErr):
		status, message = http.StatusBadGateway, apiErr.Message
	default:
		log.Printf("[API] session %s: auth failed: %v", bundle.ID, err)
	}

	bundle.Inbox.Notify(domain.Notification{Message: message, Severity: domain.SeverityError})
	http.Error(w, message, status)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || orderID <= 0 {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	png, err := h.QR.Generate(orderID)
	if err != nil {
		log.Printf("[API] QR code for order %d failed: %v", orderID, err)
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
