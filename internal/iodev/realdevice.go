//go:build linux

package iodev

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/act-storage/act/internal/histogram"
)

// fdHandle is a Handle backed by a real, O_DIRECT-opened file descriptor.
type fdHandle struct {
	fd int
}

func (h fdHandle) ReadAt(buf []byte, offset int64) error {
	n, err := unix.Pread(h.fd, buf, offset)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short read: got %d of %d bytes", n, len(buf))
	}
	return nil
}

func (h fdHandle) WriteAt(buf []byte, offset int64) error {
	n, err := unix.Pwrite(h.fd, buf, offset)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short write: wrote %d of %d bytes", n, len(buf))
	}
	return nil
}

// realBackend is the descriptor pool (C3) for one real block device: a
// buffered channel of already-open fds, opening a new one on a pool miss.
type realBackend struct {
	path     string
	openFlag int
	pool     chan int
}

// openFlags derives O_DIRECT|O_RDWR, plus O_DSYNC unless disableODSync
// asks for buffered-write semantics on the write-back stream.
func openFlags(disableODSync bool) int {
	flags := unix.O_DIRECT | unix.O_RDWR | unix.O_CLOEXEC
	if !disableODSync {
		flags |= unix.O_DSYNC
	}
	return flags
}

func newRealBackend(path string, disableODSync bool, poolCapacity int) *realBackend {
	return &realBackend{
		path:     path,
		openFlag: openFlags(disableODSync),
		pool:     make(chan int, poolCapacity),
	}
}

func (b *realBackend) Acquire() (Handle, error) {
	select {
	case fd := <-b.pool:
		return fdHandle{fd: fd}, nil
	default:
	}

	fd, err := unix.Open(b.path, b.openFlag, 0)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", b.path, err)
	}
	return fdHandle{fd: fd}, nil
}

func (b *realBackend) Release(h Handle) {
	fd := h.(fdHandle).fd
	select {
	case b.pool <- fd:
	default:
		// Pool sized to the run's peak concurrency; this should never
		// trigger, but a full channel must not block a hot-path release.
		unix.Close(fd)
	}
}

func (b *realBackend) Discard(h Handle) {
	unix.Close(h.(fdHandle).fd)
}

func (b *realBackend) Drain() {
	for {
		select {
		case fd := <-b.pool:
			unix.Close(fd)
		default:
			return
		}
	}
}

// OpenReal probes a real block device's geometry and returns a ready
// Device backed by a recyclable pool of O_DIRECT file descriptors.
// poolCapacity should be at least the number of goroutines that will
// concurrently issue I/O against this device (transaction workers that
// might select it, plus its two large-block loops).
func OpenReal(path string, index int, largeBlockBytes uint64, recordBytes uint32, disableODSync bool, poolCapacity int, scale histogram.Scale) (*Device, error) {
	backend := newRealBackend(path, disableODSync, poolCapacity)

	h, err := backend.Acquire()
	if err != nil {
		return nil, err
	}
	fd := h.(fdHandle).fd

	sizeBytes, err := probeSizeBytes(fd)
	if err != nil {
		backend.Discard(h)
		return nil, fmt.Errorf("probe size of %s: %w", path, err)
	}

	minOpBytes, err := discoverMinOpBytes(fd)
	if err != nil {
		backend.Discard(h)
		return nil, fmt.Errorf("probe min op size of %s: %w", path, err)
	}

	backend.Release(h)

	numLargeBlocks, numReadOffsets, readBytes, err := computeGeometry(sizeBytes, minOpBytes, largeBlockBytes, recordBytes)
	if err != nil {
		backend.Drain()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Device{
		Name:             path,
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
