package scheduler

import "testing"

func TestApplyMissingSysfsPathIsNonFatal(t *testing.T) {
	// /sys/block/nonexistent-device-xyz should never exist in a test
	// sandbox; Apply must return an error, not panic or block.
	err := Apply("/dev/nonexistent-device-xyz", ModeDeadline)
	if err == nil {
		t.Fatal("expected an error for a device with no sysfs scheduler file")
	}
}

func TestModeConstants(t *testing.T) {
	modes := []Mode{ModeNoop, ModeCFQ, ModeDeadline}
	seen := map[Mode]bool{}
	for _, m := range modes {
		if m == "" {
			t.Fatal("empty mode constant")
		}
		seen[m] = true
	}
	if len(seen) != 3 {
		t.Fatal("expected three distinct mode constants")
	}
}
