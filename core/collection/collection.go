package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collection is a named, in-memory set of records that can be searched with
// RSQL filters. Searches emit start, success and failure events to
// registered subscriptions. It is safe for concurrent use.
type Collection[T any] struct {
	name          string
	records       []T
	mu            sync.RWMutex
	opts          options
	bus           *events.TypedEventBus[SearchEvent]
	subscriptions map[string]*SubscriptionInfo // To store unsubscribe functions
	subMu         sync.RWMutex                 // Mutex to protect subscriptions map
}

// New creates a collection holding a copy of records.
func New[T any](name string, records []T, opts ...Option) (*Collection[T], error) {
	bus, err := events.NewTypedEventBus[SearchEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	return &Collection[T]{
		name:          name,
		records:       append([]T(nil), records...),
		opts:          newOptions(opts),
		bus:           bus,
		subscriptions: make(map[string]*SubscriptionInfo),
	}, nil
}

// Name returns the name of the collection.
func (c *Collection[T]) Name() string {
	return c.name
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// All returns a copy of the records.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.records...)
}

// Add appends records to the collection. Adding nothing emits no event.
func (c *Collection[T]) Add(records ...T) {
	if len(records) == 0 {
		return
	}
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()

	count := len(records)
	c.emitEvent(createEvent(RecordsAdded, "add", c.name, nil, nil, &count, nil, time.Time{}))
}

// Search returns the records matching filter, in insertion order. Failures
// are returned as a *SearchError.
func (c *Collection[T]) Search(ctx context.Context, filter string) ([]T, error) {
	startTime := time.Now()
	searchID := uuid.New().String()
	c.emitEvent(createEvent(SearchStart, "search", c.name, &searchID, &filter, nil, nil, startTime))

	c.mu.RLock()
	snapshot := c.records[:len(c.records):len(c.records)]
	c.mu.RUnlock()

	matched, err := search(ctx, filter, snapshot, c.opts)
	if err != nil {
		errStr := err.Error()
		c.opts.logger.Error("Search failed",
			zap.String("collection", c.name),
			zap.String("filter", filter),
			zap.Error(err),
		)
		c.emitEvent(createEvent(SearchFailed, "search", c.name, &searchID, &filter, nil, &errStr, startTime))
		return nil, err
	}

	count := len(matched)
	c.emitEvent(createEvent(SearchSuccess, "search", c.name, &searchID, &filter, &count, nil, startTime))
	return matched, nil
}

// emitEvent is a helper method to emit events
func (c *Collection[T]) emitEvent(event SearchEvent) {
	if c.bus != nil {
		c.bus.Emit(string(event.Type), event)
	}
}

// RegisterSubscription registers a callback for a collection event. It returns
// a unique ID that can be used to unregister the subscription later.
func (c *Collection[T]) RegisterSubscription(options RegisterSubscriptionOptions) string {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	unsubscribe := c.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()

	c.subscriptions[id] = &SubscriptionInfo{
		Id:          &id,
		Event:       options.Event,
		Unsubscribe: unsubscribe,
		Label:       options.Label,
		Description: options.Description,
	}
	c.opts.logger.Debug("Registered subscription",
		zap.String("collection", c.name),
		zap.String("event", string(options.Event)),
		zap.String("id", id),
	)
	return id
}

// UnregisterSubscription removes a subscription by its ID.
func (c *Collection[T]) UnregisterSubscription(id string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if info, ok := c.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(c.subscriptions, id)
	}
}

// Subscriptions returns a list of all currently active subscriptions.
func (c *Collection[T]) Subscriptions() []SubscriptionInfo {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
