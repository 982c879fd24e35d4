// Package scheduler implements the best-effort sysfs I/O scheduler
// configurator (C11): for each device path, write the configured
// scheduler mode to /sys/block/<name>/queue/scheduler. Every failure is
// logged and ignored — a permission error, a non-Linux platform, or a
// device nested behind a symlink must never abort the run.
package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mode is one of the scheduler modes the reference tool recognizes.
type Mode string

const (
	ModeNoop     Mode = "noop"
	ModeCFQ      Mode = "cfq"
	ModeDeadline Mode = "deadline"
)

// Apply writes mode to the sysfs scheduler file for devicePath's trailing
// path segment (e.g. "/dev/sdb" -> "/sys/block/sdb/queue/scheduler"). It
// returns an error purely for logging; callers must not treat a non-nil
// return as fatal.
func Apply(devicePath string, mode Mode) error {
	tag := filepath.Base(devicePath)
	schedulerPath := filepath.Join("/sys/block", tag, "queue", "scheduler")

	f, err := os.OpenFile(schedulerPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", schedulerPath, err)
	}
	defer f.Close()

	if _, err := f.WriteString(string(mode)); err != nil {
		return fmt.Errorf("write %q to %s: %w", mode, schedulerPath, err)
	}
	return nil
}
