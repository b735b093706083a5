package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadCart_Defaults(t *testing.T) {
	for _, key := range []string{"CART_ADDR", "CART_STORE", "CART_MAX_QUANTITY", "CHECKOUT_REDIRECT_DELAY", "KAFKA_BROKER", "SESSION_IDLE_TTL", "SESSION_MAX"} {
		t.Setenv(key, "")
	}

	cfg := LoadCart()
	assert.Equal(t, ":8084", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 0, cfg.MaxQuantity)
	assert.Equal(t, 2*time.Second, cfg.RedirectDelay)
	assert.Equal(t, "dashboard.html", cfg.RedirectTarget)
	assert.Empty(t, cfg.KafkaBroker)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 10000, cfg.MaxSessions)
	assert.NoError(t, cfg.Validate())
}

func TestLoadCart_Overrides(t *testing.T) {
	t.Setenv("CART_STORE", StoreRedis)
	t.Setenv("CART_SLOT_TTL", "24h")
	t.Setenv("CART_MAX_QUANTITY", "10")
	t.Setenv("CART_LOCK_DURING_CHECKOUT", "true")
	t.Setenv("CHECKOUT_REDIRECT_DELAY", "500ms")

	cfg := LoadCart()
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 24*time.Hour, cfg.SlotTTL)
	assert.Equal(t, 10, cfg.MaxQuantity)
	assert.True(t, cfg.LockDuringCheckout)
	assert.Equal(t, 500*time.Millisecond, cfg.RedirectDelay)
}

func TestEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "many")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "soon")

	assert.Equal(t, 3, GetInt("TEST_INT", 3))
	assert.False(t, GetBool("TEST_BOOL", false))
	assert.Equal(t, time.Second, GetDuration("TEST_DURATION", time.Second))
}

func TestCart_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Cart
		wantErr bool
	}{
		{name: "memory", cfg: Cart{Store: StoreMemory}},
		{name: "postgres", cfg: Cart{Store: StorePostgres}},
		{name: "unknown_store", cfg: Cart{Store: "mongo"}, wantErr: true},
		{name: "negative_limit", cfg: Cart{Store: StoreMemory, MaxLines: -1}, wantErr: true},
		{name: "negative_session_cap", cfg: Cart{Store: StoreMemory, MaxSessions: -1}, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.cfg.Validate()
			assert.Equal(t, testCase.wantErr, err != nil)
		})
	}
}
