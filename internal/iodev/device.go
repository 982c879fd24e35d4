// Package iodev implements the direct-I/O engine and device descriptor
// pool: acquiring a recycled file handle, positioning it, issuing exactly
// one read or write, and timing the result. Two backends satisfy the same
// Device shape — a real O_DIRECT-opened block device, and an in-memory
// stand-in used by tests that can't rely on a loopback device being
// available.
package iodev

import (
	"fmt"

	"github.com/act-storage/act/internal/histogram"
	"github.com/act-storage/act/internal/rng"
)

// Handle is a borrowed, single-owner I/O handle: either a real O_DIRECT
// file descriptor or an in-memory backing buffer.
type Handle interface {
	ReadAt(buf []byte, offset int64) error
	WriteAt(buf []byte, offset int64) error
}

// Backend hands out and recycles Handles for one device. Acquire may open
// a fresh handle when its pool is empty; Release returns a handle used
// successfully; Discard drops one that errored, per C5's borrow contract.
type Backend interface {
	Acquire() (Handle, error)
	Release(h Handle)
	Discard(h Handle)
	// Drain closes every pooled handle. Called once at shutdown.
	Drain()
}

// Device identifies one raw block device. The fields below are immutable
// once OpenReal/OpenMem returns; only the backend and the per-device histogram
// mutate during a run, and both are independently safe for concurrent use.
type Device struct {
	Name           string
	Index          int
	SizeBytes      uint64
	MinOpBytes     uint32
	NumLargeBlocks uint64
	NumReadOffsets uint64
	ReadBytes      uint32

	backend          Backend
	RawReadHistogram *histogram.Histogram
}

// RandomReadOffset returns a min_op_bytes-aligned transaction read offset
// drawn uniformly from the device's valid read-offset space.
func (d *Device) RandomReadOffset(r *rng.Source) uint64 {
	return (r.Uint48() % d.NumReadOffsets) * uint64(d.MinOpBytes)
}

// RandomLargeBlockOffset returns a large-block-aligned offset drawn
// uniformly from the device's large-block space.
func (d *Device) RandomLargeBlockOffset(r *rng.Source, largeBlockBytes uint64) uint64 {
	return (r.Uint48() % d.NumLargeBlocks) * largeBlockBytes
}

// Close drains the device's descriptor pool. Safe to call once, at
// shutdown, after every worker and large-block loop has stopped issuing
// I/O against the device.
func (d *Device) Close() {
	d.backend.Drain()
}

func computeGeometry(sizeBytes uint64, minOpBytes uint32, largeBlockBytes uint64, recordBytes uint32) (numLargeBlocks, numReadOffsets uint64, readBytes uint32, err error) {
	numLargeBlocks = sizeBytes / largeBlockBytes
	if numLargeBlocks == 0 {
		return 0, 0, 0, fmt.Errorf("device holds zero large blocks of %d bytes", largeBlockBytes)
	}

	numMinOpBlocks := (numLargeBlocks * largeBlockBytes) / uint64(minOpBytes)
	readReqMinOpBlocks := (uint64(recordBytes) + uint64(minOpBytes) - 1) / uint64(minOpBytes)

	if numMinOpBlocks < readReqMinOpBlocks {
		return 0, 0, 0, fmt.Errorf("device too small to hold one read request")
	}

	numReadOffsets = numMinOpBlocks - readReqMinOpBlocks + 1
	readBytes = uint32(readReqMinOpBlocks * uint64(minOpBytes))
	return numLargeBlocks, numReadOffsets, readBytes, nil
}
