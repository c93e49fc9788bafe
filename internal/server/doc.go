// Package server implements the HTTP surface using the Echo framework.
//
// Routes: the Telegram webhook receiver, liveness/readiness probes, and the
// Prometheus metrics endpoint. The webhook path embeds the bot token, which
// doubles as the shared secret with Telegram.
package server
