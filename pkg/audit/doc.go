// Package audit provides non-blocking, batched audit logging for
// governed LLM requests.
//
// # Overview
//
// Every governed request outcome produces an Event. Events enter a
// bounded in-memory queue through Enqueue, which never blocks and never
// fails: when the queue is full the newest event is dropped and counted.
// A flush drains the oldest batch in FIFO order and performs one bulk
// write to the Sink. Flushes are triggered by reaching the batch size
// on enqueue and by a periodic timer, serialized by a processing guard
// so the two triggers never overlap.
//
// A failed batch is re-queued at the front to preserve order, unless
// that would overflow the queue, in which case it is dropped with a
// warning: availability of new events wins over retry of old ones.
// Delivery is best-effort and bounded, nothing stronger.
//
// # Lifecycle
//
//	queue := audit.NewQueue(sink, audit.Config{})
//	queue.Start()
//	defer queue.Stop(ctx) // final synchronous drain on shutdown
//
// The host application wires Stop to its shutdown signal.
package audit
