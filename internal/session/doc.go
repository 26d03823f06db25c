// Package session keeps short-lived multi-turn chat history in memory. Sessions
// are keyed by an opaque id, bounded in number and expire after a fixed TTL.
package session
