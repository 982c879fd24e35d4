package workload

import (
	"time"

	"github.com/act-storage/act/internal/alignedbuf"
	"github.com/act-storage/act/internal/clock"
	"github.com/act-storage/act/internal/iodev"
	"github.com/act-storage/act/internal/rng"
)

// runLargeBlockLoop is the large-block rate loop (C6): a per-device,
// per-direction goroutine issuing large sequential operations at a
// constant aggregate rate. Read and write loops for the same device are
// staggered against each other and against the same-direction loop on
// other devices, so their issue moments don't synchronize into a single
// spike.
func runLargeBlockLoop(rc *RunContext, d *iodev.Device, write bool, streamID uint64) {
	defer rc.wg.Done()

	buf := alignedbuf.Alloc(int(rc.Cfg.LargeBlockBytes))
	r := rng.New(streamID)
	numDevices := uint64(len(rc.Cfg.Devices))

	startUs := rc.RunStartUs.Load() - uint64(d.Index)*stagger
	if write {
		startUs -= rwStagger
	}

	hist := rc.LargeBlockReadHist
	if write {
		hist = rc.LargeBlockWriteHist
	}

	for count := uint64(0); rc.Running.Load(); {
		offset := d.RandomLargeBlockOffset(r, rc.Cfg.LargeBlockBytes)

		var stopNs uint64
		var err error
		startNs := clock.NowNs()
		if write {
			r.Fill(buf)
			stopNs, err = d.Write(offset, buf)
		} else {
			stopNs, err = d.Read(offset, buf)
		}

		if err != nil {
			if rc.Log != nil {
				op := "READ"
				if write {
					op = "WRITE"
				}
				rc.Log.WithDevice(d.Index).IOFailed(op, offset, len(buf), err)
			}
		} else {
			hist.Insert(clock.SafeDeltaNs(startNs, stopNs))
		}

		count++

		targetUs := count * 1_000_000 * numDevices / uint64(rc.Cfg.LargeBlockOpsPerSec)
		nowUs := clock.NowUs()
		lagUs := int64(nowUs-startUs) - int64(targetUs)

		switch {
		case lagUs < 0:
			time.Sleep(time.Duration(-lagUs) * time.Microsecond)
		case lagUs > rc.maxSleepLagUsec():
			reason := "large block reads can't keep up"
			if write {
				reason = "large block writes can't keep up"
			}
			rc.TriggerOverload(reason)
			return
		}
	}
}
