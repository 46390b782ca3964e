package audit

import (
	"context"
	"time"
)

// EventType classifies a governed request outcome.
type EventType string

const (
	// EventRequest records an admitted request before the provider call.
	EventRequest EventType = "llm_request"

	// EventResponse records a completed provider call with its usage.
	EventResponse EventType = "llm_response"

	// EventError records a failed or rejected request.
	EventError EventType = "llm_error"
)

// Event describes one governed request outcome.
type Event struct {
	// ID is a UUID assigned at enqueue time when empty.
	ID string `json:"id"`

	// Type is the outcome classification.
	Type EventType `json:"type"`

	// AccountID is the governed account.
	AccountID string `json:"account_id"`

	// Provider is the resolved provider name.
	Provider string `json:"provider"`

	// Model is the model the request targeted.
	Model string `json:"model"`

	// Timestamp is when the outcome occurred.
	Timestamp time.Time `json:"timestamp"`

	// Metadata carries free-form context (token counts, cost, error).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Record is the persisted shape of an Event at the sink boundary.
type Record struct {
	AccountID  string         `json:"account_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	NewValues  map[string]any `json:"new_values"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Sink persists audit record batches. Implementations must be safe for
// concurrent use.
type Sink interface {
	// WriteBatch persists records in one bulk operation. Either the
	// whole batch is persisted or an error is returned.
	WriteBatch(ctx context.Context, records []Record) error

	// Close releases sink resources.
	Close() error
}

// Stats contains queue counters.
type Stats struct {
	// QueueSize is the number of buffered events.
	QueueSize int `json:"queue_size"`

	// Enqueued counts events accepted by Enqueue.
	Enqueued int64 `json:"enqueued"`

	// Flushed counts events successfully persisted.
	Flushed int64 `json:"flushed"`

	// Failed counts events whose batch write failed at least once.
	Failed int64 `json:"failed"`

	// Dropped counts events lost to overflow, on enqueue or on a
	// failed-batch re-queue that would not fit.
	Dropped int64 `json:"dropped"`

	// SuccessRate is Flushed / Enqueued, or 0 with no traffic.
	SuccessRate float64 `json:"success_rate"`
}

// toRecord converts an Event to its persisted shape. The provider name
// doubles as the entity identifier, matching the audit table the
// administrative surface reads.
func toRecord(event Event) Record {
	values := map[string]any{
		"provider": event.Provider,
		"model":    event.Model,
	}
	for k, v := range event.Metadata {
		values[k] = v
	}

	return Record{
		AccountID:  event.AccountID,
		Action:     string(event.Type),
		EntityType: "llm_provider",
		EntityID:   event.Provider,
		NewValues:  values,
		CreatedAt:  event.Timestamp,
	}
}
