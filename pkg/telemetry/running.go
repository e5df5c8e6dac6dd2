package telemetry

// IsRunning decides from two consecutive snapshots whether the simulation
// clock is actually advancing. A paused simulator or one sitting in a menu
// keeps serving variable reads with a frozen absolute clock.
//
// The classifier is stateless: callers hand it the previous and current
// snapshot of the same sampling stream.
func IsRunning(prev, cur Snapshot) bool {
	// No history yet: trust nothing.
	if prev.CapturedAt.IsZero() {
		return false
	}

	// A zeroed absolute clock means the provider never delivered one
	// (disconnected or still loading).
	if cur.AbsoluteTime == 0 {
		return false
	}

	// Clock must advance between cycles. Sim rate below 1 stretches wall
	// time per sim second, so any positive delta counts.
	return cur.AbsoluteTime > prev.AbsoluteTime
}
