// Package clock provides monotonic timestamps for pacing and latency
// measurement, mirroring the CLOCK_MONOTONIC helpers in the reference
// tool's clock.h: nanosecond, microsecond, and millisecond readings that
// are never affected by wall-clock adjustments.
package clock

import "time"

// epoch anchors every reading. time.Since(epoch) is computed from the
// runtime's monotonic clock reading embedded in time.Time, so wall-clock
// step changes (NTP, manual date -s) never perturb it.
var epoch = time.Now()

// NowNs returns a monotonic timestamp in nanoseconds.
func NowNs() uint64 {
	return uint64(time.Since(epoch))
}

// NowUs returns a monotonic timestamp in microseconds.
func NowUs() uint64 {
	return uint64(time.Since(epoch) / time.Microsecond)
}

// NowMs returns a monotonic timestamp in milliseconds.
func NowMs() uint64 {
	return uint64(time.Since(epoch) / time.Millisecond)
}

// SafeDeltaNs returns stop-start, or 0 if stop precedes start. Clock
// readings taken around a syscall can appear to go backwards under
// extreme scheduling delay; the reference tool guards the same way.
func SafeDeltaNs(startNs, stopNs uint64) uint64 {
	if startNs > stopNs {
		return 0
	}
	return stopNs - startNs
}
