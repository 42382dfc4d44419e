package providers

import (
	"context"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.DomainEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelRoster carries roster_changed events from the administration side.
	EventChannelRoster = "doctors:roster"

	// EventChannelRecommendations carries one event per recommendation request.
	EventChannelRecommendations = "recommendations"
)
