package workload

import (
	"time"

	"github.com/act-storage/act/internal/alignedbuf"
	"github.com/act-storage/act/internal/clock"
)

// runWorker is one worker in the pool behind queue queueIndex (C8): pop a
// request with a bounded timeout, issue the read, and record its latency
// in three histograms before freeing the request.
func runWorker(rc *RunContext, queueIndex, workerIndex int) {
	defer rc.wg.Done()

	q := rc.Queues[queueIndex]
	buf := alignedbuf.Alloc(int(maxReadBytes(rc)))

	log := rc.Log
	if log != nil {
		log = log.WithQueue(queueIndex).WithWorker(workerIndex)
	}

	for rc.Running.Load() {
		req, ok := q.Pop(workerPopTimeout * time.Millisecond)
		if !ok {
			continue
		}

		rawStart := clock.NowNs()
		stopNs, err := req.Device.Read(req.Offset, buf[:req.Size])

		if err != nil {
			if log != nil {
				log.IOFailed("READ", req.Offset, int(req.Size), err)
			}
			rc.ReqsQueued.Add(-1)
			continue
		}

		rawLatency := clock.SafeDeltaNs(rawStart, stopNs)
		rc.RawReadHist.Insert(rawLatency)
		req.Device.RawReadHistogram.Insert(rawLatency)
		rc.EndToEndReadHist.Insert(clock.SafeDeltaNs(req.EnqueueTimeNs, stopNs))

		rc.ReqsQueued.Add(-1)
	}
}

// maxReadBytes returns the largest read_bytes across every configured
// device, sized so one preallocated buffer per worker fits any device's
// requests without a per-request allocation.
func maxReadBytes(rc *RunContext) uint32 {
	var max uint32
	for _, d := range rc.Cfg.Devices {
		if d.ReadBytes > max {
			max = d.ReadBytes
		}
	}
	return max
}
