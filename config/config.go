package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Cart holds the cart-svc settings read from the environment.
type Cart struct {
	Addr               string
	Store              string
	SlotTTL            time.Duration
	MaxQuantity        int
	MaxLines           int
	LockDuringCheckout bool
	RedirectDelay      time.Duration
	RedirectTarget     string
	APIBaseURL         string
	PublicBaseURL      string
	KafkaBroker        string
	EventsTopic        string
	EventsGroupID      string
	RequestTimeout     time.Duration
	SessionIdleTTL     time.Duration
	MaxSessions        int
}

func LoadCart() Cart {
	return Cart{
		Addr:               GetEnv("CART_ADDR", ":8084"),
		Store:              GetEnv("CART_STORE", StoreMemory),
		SlotTTL:            GetDuration("CART_SLOT_TTL", 0),
		MaxQuantity:        GetInt("CART_MAX_QUANTITY", 0),
		MaxLines:           GetInt("CART_MAX_LINES", 0),
		LockDuringCheckout: GetBool("CART_LOCK_DURING_CHECKOUT", false),
		RedirectDelay:      GetDuration("CHECKOUT_REDIRECT_DELAY", 2*time.Second),
		RedirectTarget:     GetEnv("CHECKOUT_REDIRECT_TARGET", "dashboard.html"),
		APIBaseURL:         GetEnv("API_BASE_URL", "http://127.0.0.1:8000/api"),
		PublicBaseURL:      GetEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		KafkaBroker:        os.Getenv("KAFKA_BROKER"),
		EventsTopic:        GetEnv("CART_EVENTS_TOPIC", "cart-events"),
		EventsGroupID:      GetEnv("CART_EVENTS_GROUP", "cart-svc"),
		RequestTimeout:     GetDuration("API_TIMEOUT", 10*time.Second),
		SessionIdleTTL:     GetDuration("SESSION_IDLE_TTL", 30*time.Minute),
		MaxSessions:        GetInt("SESSION_MAX", 10000),
	}
}

func (c Cart) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown CART_STORE %q", c.Store)
	}
	if c.MaxQuantity < 0 || c.MaxLines < 0 {
		return fmt.Errorf("cart limits must not be negative")
	}
	if c.SessionIdleTTL < 0 || c.MaxSessions < 0 {
		return fmt.Errorf("session limits must not be negative")
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[CONFIG] invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func GetBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[CONFIG] invalid %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[CONFIG] invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func MustInitPostgres() *sql.DB {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}
