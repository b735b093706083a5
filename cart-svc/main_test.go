package main

import (
	"context"
	"testing"

	"overcooked-cart/cart-svc/internal/storage"
	"overcooked-cart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlotStore_Memory(t *testing.T) {
	store, closeStore := newSlotStore(config.Cart{Store: config.StoreMemory})
	defer closeStore()

	_, ok := store.(*storage.MemoryStore)
	require.True(t, ok)

	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	value, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))
}
