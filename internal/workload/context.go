// Package workload implements the closed-loop workload driver: the
// transaction generator (C7), the worker pool (C8), the large-block rate
// loops (C6), the histogram reporter (C9), and the supervisor (C10) that
// ties them together.
package workload

import (
	"sync"
	"sync/atomic"

	"github.com/act-storage/act/internal/histogram"
	"github.com/act-storage/act/internal/iodev"
	"github.com/act-storage/act/internal/logging"
	"github.com/act-storage/act/internal/queue"
)

// Pacing constants from the reference tool's act.c. stagger and rwStagger
// are in microseconds; the other two carry their unit in the name or
// comment.
const (
	stagger          = 1000
	rwStagger        = 500
	defaultMaxLagSec = 10
	workerPopTimeout = 100 // milliseconds
)

// Config holds every knob the workload engine needs, already validated
// and derived by the root package's Config.
type Config struct {
	Devices             []*iodev.Device
	NumQueues           int
	ThreadsPerQueue     int
	ReadReqsPerSec      uint32
	LargeBlockOpsPerSec uint32 // 0 disables both large-block loops entirely
	LargeBlockBytes     uint64
	RecordBytes         uint32
	ReportIntervalSec   uint32
	MaxReqsQueued       int32
	MaxLagSec           int32
	Scale               histogram.Scale
}

// RunContext is the single shared record the supervisor constructs and
// every goroutine reads/writes through: the reference tool's several
// process-wide singletons collapsed into one value passed by reference,
// per the design note against reintroducing package-level globals.
type RunContext struct {
	Cfg    Config
	Queues []*queue.Queue
	Log    *logging.Logger

	Running    atomic.Bool
	ReqsQueued atomic.Int32
	RunStartUs atomic.Uint64

	LargeBlockReadHist  *histogram.Histogram
	LargeBlockWriteHist *histogram.Histogram
	RawReadHist         *histogram.Histogram
	EndToEndReadHist    *histogram.Histogram

	overloadOnce sync.Once
	overloadMsg  string

	wg sync.WaitGroup
}

// NewRunContext allocates the queues and histograms for cfg. It does not
// start any goroutine.
func NewRunContext(cfg Config, log *logging.Logger) *RunContext {
	rc := &RunContext{
		Cfg:                 cfg,
		Log:                 log,
		LargeBlockReadHist:  histogram.New(cfg.Scale),
		LargeBlockWriteHist: histogram.New(cfg.Scale),
		RawReadHist:         histogram.New(cfg.Scale),
		EndToEndReadHist:    histogram.New(cfg.Scale),
	}
	rc.Queues = make([]*queue.Queue, cfg.NumQueues)
	for i := range rc.Queues {
		rc.Queues[i] = queue.New()
	}
	rc.Running.Store(true)
	return rc
}

// TriggerOverload clears Running and records the first reason seen; later
// calls (from a different loop noticing the same condition) are no-ops.
func (rc *RunContext) TriggerOverload(reason string) {
	rc.overloadOnce.Do(func() {
		rc.overloadMsg = reason
		rc.Running.Store(false)
		if rc.Log != nil {
			rc.Log.Overload(reason)
		}
	})
}

// OverloadReason returns the reason TriggerOverload was first called with,
// or "" if the run never overloaded.
func (rc *RunContext) OverloadReason() string {
	return rc.overloadMsg
}

// maxSleepLagUsec returns the large-block-loop overload threshold in
// microseconds, derived from the configured max-lag-sec (falling back to
// the reference tool's own 10-second default when unset).
func (rc *RunContext) maxSleepLagUsec() int64 {
	lagSec := rc.Cfg.MaxLagSec
	if lagSec <= 0 {
		lagSec = defaultMaxLagSec
	}
	return int64(lagSec) * 1_000_000
}

// QueueDepth sums the current length of every queue, for the reporter.
func (rc *RunContext) QueueDepth() int {
	total := 0
	for _, q := range rc.Queues {
		total += q.Len()
	}
	return total
}
