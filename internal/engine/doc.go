// Package engine runs a hashing job end to end.
//
// The Engine streams records from a source, groups them into fixed-size
// batches and hands each batch to a bounded worker pool. When the pool's
// queue is full the streaming goroutine runs the batch itself, which
// keeps at most about twice the worker count of batches in memory without
// ever dropping work. Completed batches are drained by the streaming
// goroutine only, so output sinks are never written concurrently.
//
// A run either completes with every output file written, or rolls back:
// outstanding work is cancelled and every file the run created is
// removed. A duplicate patient identifier in the input always rolls the
// run back.
//
// State flow:
//
//	Initializing -> Streaming -> Draining -> Finalizing -> Succeeded
//	                    |            |            |
//	                    +------------+------------+-----> RolledBack
package engine
