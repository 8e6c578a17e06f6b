package tagpad

// Watchdog counts heartbeats since the last valid command. The count
// saturates at the threshold and only Clear brings it back.
type Watchdog struct {
	threshold int
	count     int
}

// NewWatchdog creates a Watchdog.
func NewWatchdog(threshold int) *Watchdog {
	return &Watchdog{threshold: threshold}
}

// Tick counts one heartbeat and reports whether the threshold is reached.
// Once reached, every further Tick reports it again.
func (w *Watchdog) Tick() bool {
	if w.count < w.threshold {
		w.count++
	}
	return w.count >= w.threshold
}

// Clear restarts counting.
func (w *Watchdog) Clear() {
	w.count = 0
}

// Count returns the current count.
func (w *Watchdog) Count() int {
	return w.count
}
