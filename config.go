package act

import (
	"runtime"
	"strings"

	"github.com/act-storage/act/internal/scheduler"
)

// Config holds every setting from the reference tool's configuration
// table: device paths, target rates, pool
// shapes, and the handful of reserved keys the core does not act on but
// still parses so a config file written for the full tool loads cleanly.
type Config struct {
	DeviceNames []string

	TestDurationSec uint32
	ReadReqsPerSec  uint32
	WriteReqsPerSec uint32

	NumQueues       uint32
	ThreadsPerQueue uint32

	ReportIntervalSec     uint32
	MicrosecondHistograms bool

	RecordBytes         uint32
	RecordBytesRangeMax uint32
	LargeBlockOpKBytes  uint32
	ReplicationFactor   uint32
	UpdatePct           uint32
	DefragLwmPct        uint32

	DisableODSync bool

	// Reserved: parsed and validated, never consulted by the core engine.
	CommitToDevice      bool
	CommitMinBytes      uint32
	TombRaider          bool
	TombRaiderSleepUsec uint32

	MaxReqsQueued uint32
	MaxLagSec     int32

	SchedulerMode scheduler.Mode
}

// DefaultConfig returns a Config populated with every documented default.
// device-names, test-duration-sec, read-reqs-per-sec, and
// write-reqs-per-sec have no default and must be set by the caller.
func DefaultConfig() Config {
	return Config{
		NumQueues:         uint32(runtime.NumCPU()),
		ThreadsPerQueue:   4,
		ReportIntervalSec: 1,
		RecordBytes:       1536,
		LargeBlockOpKBytes: 128,
		ReplicationFactor: 1,
		DefragLwmPct:      50,
		MaxReqsQueued:     100000,
		MaxLagSec:         10,
		SchedulerMode:     scheduler.ModeNoop,
	}
}

// LargeBlockBytes returns the size of one large-block operation in bytes.
func (c Config) LargeBlockBytes() uint64 {
	return uint64(c.LargeBlockOpKBytes) * 1024
}

// LargeBlockOpsPerSec derives the aggregate large-block rate from
// write-reqs-per-sec and defrag-lwm-pct (Open Question OQ-1 in DESIGN.md:
// the reference ties defragmentation pressure to the write-back rate
// rather than exposing large_block_ops_per_sec directly). A zero result
// disables the large-block loops entirely, matching the reference
// tool's write-reqs-per-sec == 0 behavior.
func (c Config) LargeBlockOpsPerSec() uint32 {
	if c.WriteReqsPerSec == 0 {
		return 0
	}
	rate := uint64(c.WriteReqsPerSec) * uint64(c.DefragLwmPct) / 100
	if rate == 0 {
		rate = 1
	}
	return uint32(rate)
}

// Validate checks the required settings, the counts and sizes that must
// be non-zero, defrag-lwm-pct and scheduler-mode, returning the first
// violation found as a *Error tagged ErrCodeConfigInvalid.
func (c Config) Validate() error {
	if len(c.DeviceNames) == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "device-names is required")
	}
	for _, name := range c.DeviceNames {
		if strings.TrimSpace(name) == "" {
			return NewError("config validate", ErrCodeConfigInvalid, "device-names contains an empty entry")
		}
	}
	if c.TestDurationSec == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "test-duration-sec must be > 0")
	}
	if c.NumQueues == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "num-queues must be > 0")
	}
	if c.ThreadsPerQueue == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "threads-per-queue must be > 0")
	}
	if c.ReportIntervalSec == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "report-interval-sec must be > 0")
	}
	if c.RecordBytes == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "record-bytes must be > 0")
	}
	if c.LargeBlockOpKBytes == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "large-block-op-kbytes must be > 0")
	}
	if c.ReplicationFactor == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "replication-factor must be > 0")
	}
	if c.DefragLwmPct > 100 {
		return NewError("config validate", ErrCodeConfigInvalid, "defrag-lwm-pct must be <= 100")
	}
	if c.MaxReqsQueued == 0 {
		return NewError("config validate", ErrCodeConfigInvalid, "max-reqs-queued must be > 0")
	}
	switch c.SchedulerMode {
	case scheduler.ModeNoop, scheduler.ModeCFQ, scheduler.ModeDeadline:
	default:
		return NewError("config validate", ErrCodeConfigInvalid, "scheduler-mode must be one of noop, cfq, deadline")
	}
	return nil
}
