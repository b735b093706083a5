package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "overcooked-cart/cart-svc/internal/api/http"
	"overcooked-cart/cart-svc/internal/gateway"
	"overcooked-cart/cart-svc/internal/service"
	"overcooked-cart/cart-svc/internal/storage"
	"overcooked-cart/config"
)

func main() {
	cfg := config.LoadCart()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := newSlotStore(cfg)
	defer closeStore()

	client := gateway.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	catalog := service.NewCatalog(client, service.NewRetrier(3, time.Second), time.Minute)

	var publisher service.EventPublisher
	if cfg.KafkaBroker != "" {
		writer := config.NewKafkaWriter(cfg.KafkaBroker, cfg.EventsTopic)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)
	}

	sessions := service.NewSessions(store, client, publisher, service.SessionsConfig{
		Cart: service.CartOptions{
			MaxQuantity: cfg.MaxQuantity,
			MaxLines:    cfg.MaxLines,
		},
		Checkout: service.CheckoutOptions{
			RedirectDelay:  cfg.RedirectDelay,
			RedirectTarget: cfg.RedirectTarget,
			LockCart:       cfg.LockDuringCheckout,
		},
		IdleTTL:    cfg.SessionIdleTTL,
		MaxBundles: cfg.MaxSessions,
	})

	if cfg.KafkaBroker != "" {
		reader := config.NewKafkaReader(cfg.KafkaBroker, cfg.EventsTopic, cfg.EventsGroupID)
		defer reader.Close()
		go service.NewEventConsumer(reader, sessions, sessions.Instance()).Start(ctx)
	}
	if cfg.SessionIdleTTL > 0 {
		go sessions.RunJanitor(ctx, cfg.SessionIdleTTL/2)
	}

	handler := httpapi.NewHandler(sessions, catalog, service.DefaultQRGenerator{BaseURL: cfg.PublicBaseURL}, cfg.APIBaseURL)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Cart Service starting on %s (store=%s)", cfg.Addr, cfg.Store)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Println("Cart Service stopped")
}

// newSlotStore opens the backend named by CART_STORE. The returned func
// releases its connections.
func newSlotStore(cfg config.Cart) (service.SlotStore, func()) {
	switch cfg.Store {
	case config.StoreRedis:
		client := config.MustInitRedis()
		return storage.NewRedisStore(client, cfg.SlotTTL), func() { client.Close() }
	case config.StorePostgres:
		db := config.MustInitPostgres()
		store := storage.NewPostgresStore(db)
		if err := store.EnsureSchema(); err != nil {
			log.Fatal("Failed to create cart_slots table:", err)
		}
		return store, func() { db.Close() }
	default:
		return storage.NewMemoryStore(), func() {}
	}
}
