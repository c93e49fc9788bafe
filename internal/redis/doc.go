// Package redis provides the persistent credential store backed by Redis.
//
// The go-redis client is instrumented through hooks: a metrics hook records
// per-command counters and latency, and a circuit breaker hook sheds load
// when Redis misbehaves so a dead store never stalls the Telegram handlers.
// Session runtime state (counters, activity log, rotation cursors) is
// deliberately not persisted here; only credentials and platform flags
// survive a restart.
package redis
