// Package bridge joins the peer link, the pose protocol and the actuator.
//
// Ownership boundary:
// - the read loop that turns peer lines into acknowledged Records
// - service lifecycle (connect, run mode, orderly close)
// - single-owner access to a link for concurrent callers (Worker)
//
// Lifecycle order:
// - connect (initial failure falls through to reconnect) -> read -> acknowledge -> actuate
//
// - every received line gets exactly one acknowledgement; timeouts get none.
package bridge
