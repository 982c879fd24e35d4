package workload

import (
	"fmt"
	"io"
)

// Report writes one report-interval block (C9): elapsed seconds, current
// queue depth, and a histogram dump line for each of the four global
// histograms plus every device's per-device raw-read histogram.
func Report(w io.Writer, rc *RunContext, elapsedSec uint64) {
	fmt.Fprintf(w, "%d sec: reqs_queued %d\n", elapsedSec, rc.ReqsQueued.Load())

	rc.LargeBlockReadHist.Dump(w, padTag("LARGE BLOCK READS"))
	rc.LargeBlockWriteHist.Dump(w, padTag("LARGE BLOCK WRITES"))
	rc.RawReadHist.Dump(w, padTag("RAW READS"))

	for _, d := range rc.Cfg.Devices {
		d.RawReadHistogram.Dump(w, padTag(d.Name))
	}

	rc.EndToEndReadHist.Dump(w, padTag("READS"))
}

// padTag left-pads tag to 18 characters, matching the reference tool's
// fixed-width histogram_tag field.
func padTag(tag string) string {
	return fmt.Sprintf("%-18s", tag)
}
