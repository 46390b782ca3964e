package audit

import (
	"context"
	"testing"
	"time"
)

func newTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	sink, err := NewSQLiteSink(SQLiteSinkConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSQLiteSinkWriteBatch(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	records := []Record{
		toRecord(Event{
			ID:        "ev-1",
			Type:      EventRequest,
			AccountID: "acc-1",
			Provider:  "openai",
			Model:     "gpt-4o",
			Timestamp: time.Now().UTC(),
		}),
		toRecord(Event{
			ID:        "ev-2",
			Type:      EventResponse,
			AccountID: "acc-1",
			Provider:  "openai",
			Model:     "gpt-4o",
			Timestamp: time.Now().UTC(),
			Metadata:  map[string]any{"cost": 0.02, "input_tokens": 120},
		}),
	}

	if err := sink.WriteBatch(ctx, records); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}

	count, err := sink.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records, got %d", count)
	}
}

func TestSQLiteSinkEmptyBatch(t *testing.T) {
	sink := newTestSink(t)

	if err := sink.WriteBatch(context.Background(), nil); err != nil {
		t.Errorf("Expected empty batch to be a no-op, got %v", err)
	}
}

func TestSQLiteSinkDeleteOlderThan(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	now := time.Now().UTC()
	records := []Record{
		{AccountID: "acc-1", Action: "llm_request", EntityType: "llm_provider",
			EntityID: "openai", NewValues: map[string]any{}, CreatedAt: now.AddDate(0, 0, -120)},
		{AccountID: "acc-1", Action: "llm_request", EntityType: "llm_provider",
			EntityID: "openai", NewValues: map[string]any{}, CreatedAt: now.AddDate(0, 0, -100)},
		{AccountID: "acc-1", Action: "llm_request", EntityType: "llm_provider",
			EntityID: "openai", NewValues: map[string]any{}, CreatedAt: now},
	}
	if err := sink.WriteBatch(ctx, records); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}

	deleted, err := sink.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted records, got %d", deleted)
	}

	count, err := sink.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining record, got %d", count)
	}
}

func TestQueueWithSQLiteSink(t *testing.T) {
	sink := newTestSink(t)
	queue := NewQueue(sink, Config{BatchSize: 10, MaxQueueSize: 100})

	for i := 0; i < 5; i++ {
		queue.Enqueue(testEvent("acc-1"))
	}
	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	count, err := sink.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 persisted records, got %d", count)
	}
}
