// Package pose owns the pose line protocol.
//
// Ownership boundary:
// - parsing and range-checking the 7-field pose line (yaw pitch roll lx ly rx ry)
// - the over-long line policy
// - the acknowledgement vocabulary sent back to the peer for every outcome
//
// Package pose has no transport knowledge; callers deliver the acknowledgement.
package pose
