package collection

import (
	"context"
)

// SearchEventType is the name of an event emitted by a Collection.
type SearchEventType string

const (
	SearchStart   SearchEventType = "search:start"
	SearchSuccess SearchEventType = "search:success"
	SearchFailed  SearchEventType = "search:failed"
	RecordsAdded  SearchEventType = "records:added"
)

// SearchEvent represents events emitted by a Collection.
type SearchEvent struct {
	Type       SearchEventType `json:"type"`               // The type of event (e.g., 'search:start').
	Timestamp  int64           `json:"timestamp"`          // Timestamp when the event occurred (Unix milliseconds).
	Operation  string          `json:"operation"`          // The operation being performed (e.g., 'search', 'add').
	Collection string          `json:"collection"`         // Name of the collection.
	SearchID   *string         `json:"searchId,omitempty"` // Correlates the start event of a search with its outcome.
	Filter     *string         `json:"filter,omitempty"`   // Filter text of a search.
	Count      *int            `json:"count,omitempty"`    // Records matched by a search, or added.
	Error      *string         `json:"error,omitempty"`    // Error message if the operation failed.
	Duration   *int64          `json:"duration,omitempty"` // Duration of the operation in milliseconds.
}

// EventCallbackFunction receives the events a subscription was registered for.
type EventCallbackFunction func(ctx context.Context, event SearchEvent) error

// SubscriptionInfo describes a subscription configuration.
type SubscriptionInfo struct {
	Id          *string         `json:"id,omitempty"`          // Identifier returned by RegisterSubscription.
	Event       SearchEventType `json:"event"`                 // The event subscribed to.
	Label       *string         `json:"label,omitempty"`       // Optional short identifier.
	Description *string         `json:"description,omitempty"` // Optional description.
	Unsubscribe func()          `json:"-"`
}

// RegisterSubscriptionOptions defines options for registering a subscription.
type RegisterSubscriptionOptions struct {
	Event       SearchEventType `json:"event"`
	Label       *string         `json:"label,omitempty"`
	Description *string         `json:"description,omitempty"`
	Callback    EventCallbackFunction
}
