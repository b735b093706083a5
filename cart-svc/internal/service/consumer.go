package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"overcooked-cart/cart-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

// EventConsumer listens for logout events published by other components.
// Events carrying its own Instance as source are skipped.
type EventConsumer struct {
	Reader   *kafka.Reader
	Sessions SessionClearer
	Instance string
}

func NewEventConsumer(reader *kafka.Reader, sessions SessionClearer, instance string) *EventConsumer {
	return &EventConsumer{
		Reader:   reader,
		Sessions: sessions,
		Instance: instance,
	}
}

func (c *EventConsumer) Start(ctx context.Context) {
	log.Println("Starting cart event consumer...")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Println("Cart event consumer stopped")
				return
			}
			log.Printf("Error reading message: %v", err)
			continue
		}

		var event domain.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.ProcessEvent(ctx, event)
	}
}

func (c *EventConsumer) ProcessEvent(ctx context.Context, event domain.Event) {
	if event.Type != domain.EventUserLoggedOut || event.SessionID == "" {
		return
	}
	if c.Instance != "" && event.Source == c.Instance {
		return
	}
	if err := c.Sessions.ClearCart(ctx, event.SessionID); err != nil {
		log.Printf("Error clearing cart for session %s: %v", event.SessionID, err)
		return
	}
	log.Printf("Cleared cart for logged out session %s", event.SessionID)
}
