package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Handlers subscribe by Event.Type() within a topic; the default topic is "".
// Publish calls handlers synchronously in the publisher's goroutine and joins
// their errors. Handlers should be quick: a scene load blocks on them.
type EventBus interface {
	// Publish delivers event to every subscriber of its type in the default topic.
	Publish(event Event) error
	// PublishToTopic delivers event within topic.
	PublishToTopic(topic string, event Event) error
	// PublishBatch publishes events in order and joins the errors.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for eventType in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for eventType within topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is a no-op.
	Unsubscribe(sub Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// Metrics is only accumulated while at least one observer is registered.
	Metrics() Metrics
	Topics() []TopicInfo
}

// Event is an immutable message. Type is the routing key.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
	// EventFilter decides whether an event reaches a handler.
	EventFilter func(event Event) bool
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// Observer is notified around every delivery.
type Observer interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, elapsed time.Duration)
}

type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}

type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
