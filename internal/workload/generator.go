package workload

import (
	"time"

	"github.com/act-storage/act/internal/clock"
	"github.com/act-storage/act/internal/queue"
	"github.com/act-storage/act/internal/rng"
)

// runGenerator is the transaction generator (C7): a single goroutine that
// produces small-read descriptors at an aggregate rate and fans them out
// round-robin across the run's queues.
func runGenerator(rc *RunContext) {
	defer rc.wg.Done()

	if rc.Cfg.ReadReqsPerSec == 0 {
		return
	}

	r := rng.New(1) // stream id 1: reserved for the generator
	startUs := rc.RunStartUs.Load()

	for count := uint64(0); rc.Running.Load(); count++ {
		queued := rc.ReqsQueued.Add(1)
		if queued > rc.Cfg.MaxReqsQueued {
			rc.TriggerOverload("reqs_queued exceeded max-reqs-queued")
			return
		}

		queueIndex := int(count % uint64(rc.Cfg.NumQueues))
		deviceIndex := int(r.Uint31() % uint32(len(rc.Cfg.Devices)))
		d := rc.Cfg.Devices[deviceIndex]

		req := queue.ReadRequest{
			Device:        d,
			Offset:        d.RandomReadOffset(r),
			Size:          d.ReadBytes,
			EnqueueTimeNs: clock.NowNs(),
		}
		rc.Queues[queueIndex].Push(req)

		targetUs := (count + 1) * 1_000_000 / uint64(rc.Cfg.ReadReqsPerSec)
		elapsedUs := clock.NowUs() - startUs
		if targetUs > elapsedUs {
			sleepIfRunning(rc, time.Duration(targetUs-elapsedUs)*time.Microsecond)
		}
	}
}

// sleepIfRunning sleeps in small slices so a cleared Running flag is
// noticed promptly instead of only after a potentially long sleep.
func sleepIfRunning(rc *RunContext, d time.Duration) {
	const slice = 20 * time.Millisecond
	for d > 0 && rc.Running.Load() {
		s := d
		if s > slice {
			s = slice
		}
		time.Sleep(s)
		d -= s
	}
}
