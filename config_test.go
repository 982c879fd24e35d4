package act

import (
	"testing"

	"github.com/act-storage/act/internal/scheduler"
)

func validConfig() Config {
	c := DefaultConfig()
	c.DeviceNames = []string{"/dev/loop0"}
	c.TestDurationSec = 2
	c.ReadReqsPerSec = 100
	c.WriteReqsPerSec = 0
	return c
}

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()
	if c.ThreadsPerQueue != 4 {
		t.Fatalf("ThreadsPerQueue default = %d, want 4", c.ThreadsPerQueue)
	}
	if c.ReportIntervalSec != 1 {
		t.Fatalf("ReportIntervalSec default = %d, want 1", c.ReportIntervalSec)
	}
	if c.RecordBytes != 1536 {
		t.Fatalf("RecordBytes default = %d, want 1536", c.RecordBytes)
	}
	if c.LargeBlockOpKBytes != 128 {
		t.Fatalf("LargeBlockOpKBytes default = %d, want 128", c.LargeBlockOpKBytes)
	}
	if c.DefragLwmPct != 50 {
		t.Fatalf("DefragLwmPct default = %d, want 50", c.DefragLwmPct)
	}
	if c.MaxReqsQueued != 100000 {
		t.Fatalf("MaxReqsQueued default = %d, want 100000", c.MaxReqsQueued)
	}
	if c.MaxLagSec != 10 {
		t.Fatalf("MaxLagSec default = %d, want 10", c.MaxLagSec)
	}
	if c.SchedulerMode != scheduler.ModeNoop {
		t.Fatalf("SchedulerMode default = %v, want noop", c.SchedulerMode)
	}
	if c.NumQueues == 0 {
		t.Fatal("NumQueues default must be > 0 (detected CPU count)")
	}
}

func TestLargeBlockBytes(t *testing.T) {
	c := DefaultConfig()
	c.LargeBlockOpKBytes = 128
	if got := c.LargeBlockBytes(); got != 128*1024 {
		t.Fatalf("LargeBlockBytes() = %d, want %d", got, 128*1024)
	}
}

func TestLargeBlockOpsPerSecZeroWhenNoWrites(t *testing.T) {
	c := validConfig()
	c.WriteReqsPerSec = 0
	if got := c.LargeBlockOpsPerSec(); got != 0 {
		t.Fatalf("LargeBlockOpsPerSec() = %d, want 0", got)
	}
}

func TestLargeBlockOpsPerSecDerivedFromDefragLwm(t *testing.T) {
	c := validConfig()
	c.WriteReqsPerSec = 1000
	c.DefragLwmPct = 50
	if got := c.LargeBlockOpsPerSec(); got != 500 {
		t.Fatalf("LargeBlockOpsPerSec() = %d, want 500", got)
	}
}

func TestLargeBlockOpsPerSecNeverZeroOnceWritesEnabled(t *testing.T) {
	c := validConfig()
	c.WriteReqsPerSec = 1
	c.DefragLwmPct = 1
	if got := c.LargeBlockOpsPerSec(); got != 1 {
		t.Fatalf("LargeBlockOpsPerSec() = %d, want 1 (rounded up from zero)", got)
	}
}

func TestValidateRequiresDeviceNames(t *testing.T) {
	c := validConfig()
	c.DeviceNames = nil
	if err := c.Validate(); err == nil || !IsCode(err, ErrCodeConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrCodeConfigInvalid", err)
	}
}

func TestValidateRejectsEmptyDeviceName(t *testing.T) {
	c := validConfig()
	c.DeviceNames = []string{"/dev/loop0", "  "}
	if err := c.Validate(); err == nil || !IsCode(err, ErrCodeConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrCodeConfigInvalid", err)
	}
}

func TestValidateRequiresDuration(t *testing.T) {
	c := validConfig()
	c.TestDurationSec = 0
	if err := c.Validate(); err == nil || !IsCode(err, ErrCodeConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrCodeConfigInvalid", err)
	}
}

func TestValidateRejectsZeroQueuesOrThreads(t *testing.T) {
	c := validConfig()
	c.NumQueues = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for zero num-queues")
	}

	c = validConfig()
	c.ThreadsPerQueue = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for zero threads-per-queue")
	}
}

func TestValidateRejectsDefragLwmOver100(t *testing.T) {
	c := validConfig()
	c.DefragLwmPct = 101
	if err := c.Validate(); err == nil || !IsCode(err, ErrCodeConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrCodeConfigInvalid", err)
	}
}

func TestValidateRejectsUnknownSchedulerMode(t *testing.T) {
	c := validConfig()
	c.SchedulerMode = scheduler.Mode("cfs")
	if err := c.Validate(); err == nil || !IsCode(err, ErrCodeConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrCodeConfigInvalid", err)
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
