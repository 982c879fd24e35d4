package iodev

import "github.com/act-storage/act/internal/clock"

// Read acquires a handle, issues one positioned read of len(buf) bytes at
// offset, and returns the monotonic timestamp recorded immediately after
// the read completes and before the handle is released. buf must already
// be sized and aligned by the caller; the engine performs no alignment of
// its own.
func (d *Device) Read(offset uint64, buf []byte) (stopNs uint64, err error) {
	return d.do(offset, buf, false)
}

// Write is Read's mirror for positioned writes.
func (d *Device) Write(offset uint64, buf []byte) (stopNs uint64, err error) {
	return d.do(offset, buf, true)
}

func (d *Device) do(offset uint64, buf []byte, write bool) (uint64, error) {
	h, err := d.backend.Acquire()
	if err != nil {
		return 0, err
	}

	if write {
		err = h.WriteAt(buf, int64(offset))
	} else {
		err = h.ReadAt(buf, int64(offset))
	}
	if err != nil {
		// Per the borrow contract, a handle that errored is never
		// returned to the pool: it may be left mid-seek or wedged.
		d.backend.Discard(h)
		return 0, err
	}

	// Stamped after the operation completes and before the handle goes
	// back to the pool, so pool contention never taints the timing.
	stopNs := clock.NowNs()
	d.backend.Release(h)
	return stopNs, nil
}
