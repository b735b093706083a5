package main

import (
	"log"
	"net/http"
	"time"

	"overcooked-cart/api-gateway/internal/gateway"
	"overcooked-cart/config"

	"github.com/rs/cors"
)

func loadConfig() gateway.Config {
	return gateway.Config{
		CartSvcURL: config.GetEnv("CART_SVC_URL", "http://localhost:8084"),
		BackendURL: config.GetEnv("BACKEND_URL", "http://127.0.0.1:8000"),
		StaticDir:  config.GetEnv("STATIC_DIR", "./frontend/"),
	}
}

func main() {
	gw := gateway.NewGateway(loadConfig(), &http.Client{Timeout: config.GetDuration("API_TIMEOUT", 10*time.Second)})

	r := gw.SetupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8080", "http://127.0.0.1:8080", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Session-ID"},
		AllowCredentials: true,
	})
	handler := c.Handler(r)

	addr := config.GetEnv("GATEWAY_ADDR", ":8080")
	log.Printf("API Gateway starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
