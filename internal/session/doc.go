// Package session owns the client side of the peer TCP link.
//
// Ownership boundary:
// - dial, readiness notice, line send/receive with deadlines
// - classification of peer loss into transport errors
// - the fixed-delay reconnect loop
//
// A Session is owned by exactly one goroutine. It is not safe for concurrent use;
// share it through bridge.Worker instead.
//
// State machine:
// - Disconnected -> Connecting -> Connected
//
// - any transport error drops back to Disconnected.
package session
