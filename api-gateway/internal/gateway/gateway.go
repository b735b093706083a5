package gateway

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	CartSvcURL string
	BackendURL string
	StaticDir  string
}

type Gateway struct {
	config Config
	client HTTPClient
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	if config.StaticDir == "" {
		config.StaticDir = "./frontend/"
	}
	return &Gateway{
		config: config,
		client: client,
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	log.Printf("PROXY: %s %s -> %s%s", r.Method, r.URL.Path, targetURL, r.URL.Path)

	url := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		log.Printf("ERROR: Failed to create request: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for k, v := range r.Header {
		req.Header[k] = v
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("ERROR: Failed to proxy to %s: %v", targetURL, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("ERROR: Failed to copy response: %v", err)
	}
}

// isCartRoute reports whether cart-svc owns the path.
func isCartRoute(path string) bool {
	switch {
	case path == "/api/cart" || strings.HasPrefix(path, "/api/cart/"):
		return true
	case path == "/api/inbox":
		return true
	case strings.HasPrefix(path, "/api/session/"):
		return true
	case strings.HasPrefix(path, "/api/orders/") && strings.HasSuffix(path, "/qrcode"):
		return true
	}
	return false
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	log.Printf("ROUTE: %s %s", r.Method, path)

	if isCartRoute(path) {
		g.ProxyRequest(w, r, g.config.CartSvcURL)
		return
	}

	if strings.HasPrefix(path, "/api/") {
		if g.config.BackendURL == "" {
			log.Printf("[GATEWAY] No backend configured for %s", path)
			http.Error(w, "API route not found", http.StatusNotFound)
			return
		}
		g.ProxyRequest(w, r, g.config.BackendURL)
		return
	}

	http.ServeFile(w, r, g.config.StaticDir+"index.html")
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/api/").HandlerFunc(g.RouteHandler)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(g.config.StaticDir))))
	r.PathPrefix("/").HandlerFunc(g.RouteHandler)
	return r
}
