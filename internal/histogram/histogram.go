// Package histogram implements the latency histogram the reporter (C9)
// snapshots and prints on every report tick: one per direction (large
// block read, large block write, raw transaction read, end-to-end
// transaction read) plus one per device for raw transaction reads.
//
// Insertion is lock-free (two atomic adds per sample) since it sits on
// every worker's and every large-block loop's hot path; the reporter's
// snapshot read is allowed to race with concurrent inserts and land on a
// torn view, which is the reference tool's own tradeoff for keeping the
// data path free of the reporter's lock.
package histogram

import (
	"fmt"
	"io"
	"math/bits"
	"sync/atomic"
	"time"
)

// Scale selects the unit each bucket boundary is expressed in. The
// microsecond-histograms config flag selects between these two at
// startup.
type Scale int

const (
	ScaleMillisecond Scale = iota
	ScaleMicrosecond
)

func (s Scale) unitNs() uint64 {
	if s == ScaleMicrosecond {
		return uint64(time.Microsecond)
	}
	return uint64(time.Millisecond)
}

func (s Scale) String() string {
	if s == ScaleMicrosecond {
		return "usec"
	}
	return "msec"
}

// numBuckets covers every possible bucketIndex() result for a uint64
// duration in the chosen scale: bits.Len64 never returns more than 64.
const numBuckets = 65

// Histogram is a lock-free, log2-bucketed latency histogram. Bucket i
// holds the count of samples whose value in the histogram's scale unit
// falls in [2^(i-1), 2^i), with bucket 0 reserved for exact zero.
type Histogram struct {
	scale   Scale
	buckets [numBuckets]atomic.Uint64
	count   atomic.Uint64
}

// New creates an empty histogram using the given scale.
func New(scale Scale) *Histogram {
	return &Histogram{scale: scale}
}

// Insert records one latency sample, given in nanoseconds.
func (h *Histogram) Insert(latencyNs uint64) {
	units := latencyNs / h.scale.unitNs()
	h.buckets[bucketIndex(units)].Add(1)
	h.count.Add(1)
}

func bucketIndex(units uint64) int {
	idx := bits.Len64(units)
	if idx >= numBuckets {
		idx = numBuckets - 1
	}
	return idx
}

// bucketUpperBound returns the exclusive upper bound of bucket i, in the
// histogram's scale unit.
func bucketUpperBound(i int) uint64 {
	if i == 0 {
		return 1
	}
	return uint64(1) << uint(i)
}

// Snapshot is a point-in-time, possibly-torn copy of a histogram's bucket
// counts, safe to read without further synchronization.
type Snapshot struct {
	Scale   Scale
	Buckets [numBuckets]uint64
	Total   uint64
}

// Snapshot copies the current bucket counts. Concurrent Insert calls may
// land on either side of this read; a sample can be lost or double-counted
// across two consecutive snapshots, which the reporter accepts.
func (h *Histogram) Snapshot() Snapshot {
	var s Snapshot
	s.Scale = h.scale
	for i := range h.buckets {
		s.Buckets[i] = h.buckets[i].Load()
	}
	s.Total = h.count.Load()
	return s
}

// Percentile estimates the value at the given percentile (0.0-1.0) in
// nanoseconds, linearly interpolating within the bucket that crosses the
// target rank the same way a cumulative bucket count would.
func (s Snapshot) Percentile(p float64) uint64 {
	if s.Total == 0 {
		return 0
	}
	target := uint64(float64(s.Total) * p)

	var cumulative uint64
	for i, c := range s.Buckets {
		cumulative += c
		if cumulative >= target {
			lo := uint64(0)
			if i > 0 {
				lo = bucketUpperBound(i - 1)
			}
			hi := bucketUpperBound(i)
			if c == 0 {
				return lo * s.Scale.unitNs()
			}
			prevCumulative := cumulative - c
			fraction := float64(target-prevCumulative) / float64(c)
			units := lo + uint64(fraction*float64(hi-lo))
			return units * s.Scale.unitNs()
		}
	}
	return bucketUpperBound(numBuckets-1) * s.Scale.unitNs()
}

// Min returns the smallest non-empty bucket's lower bound, in nanoseconds.
func (s Snapshot) Min() uint64 {
	for i, c := range s.Buckets {
		if c > 0 {
			if i == 0 {
				return 0
			}
			return bucketUpperBound(i-1) * s.Scale.unitNs()
		}
	}
	return 0
}

// Max returns the largest non-empty bucket's upper bound, in nanoseconds.
func (s Snapshot) Max() uint64 {
	for i := len(s.Buckets) - 1; i >= 0; i-- {
		if s.Buckets[i] > 0 {
			return bucketUpperBound(i) * s.Scale.unitNs()
		}
	}
	return 0
}

// Dump writes one report-interval line for tag, matching the reference
// tool's convention of a fixed-width tag (device names are left-padded to
// 18 characters by the caller) followed by a percentile summary.
func (h *Histogram) Dump(w io.Writer, tag string) {
	s := h.Snapshot()
	unit := s.Scale.unitNs()

	fmt.Fprintf(w, "%-18s : n %8d, min %6d, p50 %6d, p90 %6d, p99 %6d, p99.9 %6d, max %6d (%s)\n",
		tag,
		s.Total,
		s.Min()/unit,
		s.Percentile(0.50)/unit,
		s.Percentile(0.90)/unit,
		s.Percentile(0.99)/unit,
		s.Percentile(0.999)/unit,
		s.Max()/unit,
		s.Scale,
	)
}
