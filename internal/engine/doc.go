// Package engine implements the job rotation and aggregation core: per-user
// sessions, round-robin account rotation, per-platform polling workers,
// counter/log aggregation, the status broadcaster, and the session registry.
//
// Concurrency model: one goroutine per job worker plus one per status
// broadcaster, all cooperative - they observe the session's running flag at
// the top of each iteration and never interrupt an in-flight call. The
// registry has one coarse lock, never held across a network call; hot session
// fields (counters, log, cursors) each have their own lock.
package engine
