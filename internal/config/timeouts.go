// Package config provides centralized timing constants for the edge router.
//
// These values follow LINE Messaging API constraints (reply token expiry,
// loading-indicator bounds) and the contract with the external backends
// (single-attempt forwards, short-lived flow records).
package config

import "time"

// Flow store lifetimes
const (
	// FlowTTL is how long an in-progress flow record survives before the
	// store treats it as absent. Matches the booking window communicated
	// to tenants (2 hours).
	FlowTTL = 2 * time.Hour

	// RentFlowFreshness is the window during which an uploaded image is
	// routed to the rent backend after the rent flow started. A stale
	// flow record falls back to the primary backend.
	RentFlowFreshness = 15 * time.Minute

	// FlowCleanupInterval is how often expired flow records are purged.
	FlowCleanupInterval = 30 * time.Minute
)

// LINE API constraints
const (
	// LoadingSecondsMin and LoadingSecondsMax bound the chat loading
	// indicator duration accepted by the LINE API.
	LoadingSecondsMin = 5
	LoadingSecondsMax = 60

	// LoadingSecondsDefault is the indicator duration used when a branch
	// does not specify one.
	LoadingSecondsDefault = 7
)

// Forwarding
const (
	// ForwardMaxRedirects is the number of redirect hops followed when
	// relaying a payload to a backend. Each hop re-attaches the original
	// body because redirect targets strip it by default.
	ForwardMaxRedirects = 3
)

// HTTP server timeouts
const (
	// ServerHTTPRead is the HTTP server read timeout. LINE webhook
	// payloads are small JSON bodies.
	ServerHTTPRead = 10 * time.Second

	// ServerHTTPWrite accommodates synchronous backend forwards that
	// must complete before the final reply is sent.
	ServerHTTPWrite = 65 * time.Second

	// ServerHTTPIdle is the keep-alive idle timeout.
	ServerHTTPIdle = 120 * time.Second
)
