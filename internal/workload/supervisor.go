package workload

import (
	"io"
	"time"

	"github.com/act-storage/act/internal/clock"
)

// Run is the supervisor (C10): stagger the large-block loops' notional
// start times, launch every goroutine, drive the report tick until the
// configured duration elapses or the run stops itself (overload or
// signal), then join everything and release devices.
func Run(rc *RunContext, durationSec uint32, reportOut io.Writer) {
	numDevices := uint64(len(rc.Cfg.Devices))

	// Stagger large-block ops across devices before the run's nominal
	// start, so the very first issue moments don't all land at once.
	time.Sleep(time.Duration(numDevices+1) * stagger * time.Microsecond)

	rc.RunStartUs.Store(clock.NowUs())

	rc.wg.Add(1)
	go runGenerator(rc)

	for qi := 0; qi < rc.Cfg.NumQueues; qi++ {
		for wi := 0; wi < rc.Cfg.ThreadsPerQueue; wi++ {
			rc.wg.Add(1)
			go runWorker(rc, qi, wi)
		}
	}

	// The reference ties large-block thread creation to a non-zero write
	// rate: pure-read benchmarks generate no large-block pressure at all.
	if rc.Cfg.LargeBlockOpsPerSec > 0 {
		streamID := uint64(2)
		for _, d := range rc.Cfg.Devices {
			rc.wg.Add(1)
			go runLargeBlockLoop(rc, d, false, streamID)
			streamID++
			rc.wg.Add(1)
			go runLargeBlockLoop(rc, d, true, streamID)
			streamID++
		}
	}

	runReportLoop(rc, durationSec, reportOut)

	rc.Running.Store(false)
	rc.wg.Wait()

	for _, d := range rc.Cfg.Devices {
		d.Close()
	}
}

// runReportLoop sleeps until run_start_us + count*report_interval_us,
// drift-corrected the same way the generator and large-block loops are,
// prints a report, and returns once the configured duration has elapsed
// or Running has been cleared by an overload or a signal.
func runReportLoop(rc *RunContext, durationSec uint32, out io.Writer) {
	intervalUs := uint64(rc.Cfg.ReportIntervalSec) * 1_000_000
	if intervalUs == 0 {
		intervalUs = 1_000_000
	}
	runUs := uint64(durationSec) * 1_000_000
	startUs := rc.RunStartUs.Load()

	for count := uint64(1); rc.Running.Load(); count++ {
		targetUs := count * intervalUs
		if targetUs >= runUs {
			remaining := runUs - (count-1)*intervalUs
			sleepIfRunning(rc, time.Duration(remaining)*time.Microsecond)
			if out != nil && rc.Running.Load() {
				Report(out, rc, runUs/1_000_000)
			}
			return
		}

		nowUs := clock.NowUs() - startUs
		if targetUs > nowUs {
			sleepIfRunning(rc, time.Duration(targetUs-nowUs)*time.Microsecond)
		}
		if !rc.Running.Load() {
			return
		}
		if out != nil {
			Report(out, rc, targetUs/1_000_000)
		}
	}
}
