package iodev

import (
	"fmt"
	"sync"

	"github.com/act-storage/act/internal/histogram"
)

// memHandle is a Handle backed by a shared in-memory buffer, standing in
// for a real device in tests where no loopback block device is available.
type memHandle struct {
	backend *memBackend
}

func (h memHandle) ReadAt(buf []byte, offset int64) error {
	b := h.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	end := offset + int64(len(buf))
	if offset < 0 || end > int64(len(b.data)) {
		return fmt.Errorf("read [%d,%d) out of range for %d-byte device", offset, end, len(b.data))
	}
	copy(buf, b.data[offset:end])
	return nil
}

func (h memHandle) WriteAt(buf []byte, offset int64) error {
	b := h.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	end := offset + int64(len(buf))
	if offset < 0 || end > int64(len(b.data)) {
		return fmt.Errorf("write [%d,%d) out of range for %d-byte device", offset, end, len(b.data))
	}
	copy(b.data[offset:end], buf)
	return nil
}

// memBackend is a Backend over a single shared byte slice. Every handle it
// hands out addresses the same buffer, so it never needs to pool anything;
// Acquire is unconditionally cheap (it only counts acquisitions) and
// Release/Discard/Drain are no-ops.
type memBackend struct {
	mu       sync.RWMutex
	data     []byte
	acquired int
}

func (b *memBackend) Acquire() (Handle, error) {
	b.mu.Lock()
	b.acquired++
	b.mu.Unlock()
	return memHandle{backend: b}, nil
}

func (b *memBackend) Release(Handle) {}
func (b *memBackend) Discard(Handle) {}
func (b *memBackend) Drain()         {}

// OpenMem builds an in-memory Device of sizeBytes with the given
// min_op_bytes, deriving num_large_blocks/num_read_offsets/read_bytes with
// the same formulas OpenReal uses against a probed real device. Content is
// zero-filled until written.
func OpenMem(name string, index int, sizeBytes uint64, minOpBytes uint32, largeBlockBytes uint64, recordBytes uint32, scale histogram.Scale) (*Device, error) {
	numLargeBlocks, numReadOffsets, readBytes, err := computeGeometry(sizeBytes, minOpBytes, largeBlockBytes, recordBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	backend := &memBackend{data: make([]byte, sizeBytes)}

	return &Device{
		Name:             name,
		Index:            index,
		SizeBytes:        sizeBytes,
		MinOpBytes:       minOpBytes,
		NumLargeBlocks:   numLargeBlocks,
		NumReadOffsets:   numReadOffsets,
		ReadBytes:        readBytes,
		backend:          backend,
		RawReadHistogram: histogram.New(scale),
	}, nil
}
