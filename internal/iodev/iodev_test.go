package iodev

import (
	"sync"
	"testing"

	"github.com/act-storage/act/internal/alignedbuf"
	"github.com/act-storage/act/internal/histogram"
	"github.com/act-storage/act/internal/rng"
)

func openTestDevice(t *testing.T) *Device {
	t.Helper()
	// 1 large block worth of space, 512-byte min op, 1536-byte records:
	// same shape as the reference tool's example scenarios.
	d, err := OpenMem("/dev/test0", 0, 128*1024, 512, 128*1024, 1536, histogram.ScaleMicrosecond)
	if err != nil {
		t.Fatalf("OpenMem: %v", err)
	}
	return d
}

func TestGeometryDerivation(t *testing.T) {
	d := openTestDevice(t)

	if d.NumLargeBlocks != 1 {
		t.Fatalf("NumLargeBlocks = %d, want 1", d.NumLargeBlocks)
	}
	// record_bytes=1536, min_op_bytes=512 -> 3 blocks -> read_bytes=1536.
	if d.ReadBytes != 1536 {
		t.Fatalf("ReadBytes = %d, want 1536", d.ReadBytes)
	}
	numMinOpBlocks := uint64(128 * 1024 / 512)
	wantOffsets := numMinOpBlocks - 3 + 1
	if d.NumReadOffsets != wantOffsets {
		t.Fatalf("NumReadOffsets = %d, want %d", d.NumReadOffsets, wantOffsets)
	}
}

func TestDeviceTooSmall(t *testing.T) {
	_, err := OpenMem("/dev/tiny", 0, 100, 512, 128*1024, 1536, histogram.ScaleMicrosecond)
	if err == nil {
		t.Fatal("expected error opening a device smaller than one large block")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	d := openTestDevice(t)

	writeBuf := alignedbuf.Alloc(int(d.ReadBytes))
	for i := range writeBuf {
		writeBuf[i] = byte(i)
	}
	if _, err := d.Write(0, writeBuf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	readBuf := alignedbuf.Alloc(int(d.ReadBytes))
	if _, err := d.Read(0, readBuf); err != nil {
		t.Fatalf("Read: %v", err)
	}

	for i := range readBuf {
		if readBuf[i] != writeBuf[i] {
			t.Fatalf("byte %d: got %d, want %d", i, readBuf[i], writeBuf[i])
		}
	}
}

func TestOutOfRangeReadErrors(t *testing.T) {
	d := openTestDevice(t)
	buf := alignedbuf.Alloc(int(d.ReadBytes))
	if _, err := d.Read(d.SizeBytes, buf); err == nil {
		t.Fatal("expected an error reading past the end of the device")
	}
}

func TestRandomOffsetsStayInBounds(t *testing.T) {
	d := openTestDevice(t)
	r := rng.New(1)

	for i := 0; i < 1000; i++ {
		off := d.RandomReadOffset(r)
		if off%uint64(d.MinOpBytes) != 0 {
			t.Fatalf("read offset %d not aligned to %d", off, d.MinOpBytes)
		}
		if off+uint64(d.ReadBytes) > d.SizeBytes {
			t.Fatalf("read offset %d + size %d exceeds device size %d", off, d.ReadBytes, d.SizeBytes)
		}

		lbOff := d.RandomLargeBlockOffset(r, 128*1024)
		if lbOff%(128*1024) != 0 {
			t.Fatalf("large block offset %d not aligned", lbOff)
		}
	}
}

func TestConcurrentIO(t *testing.T) {
	d := openTestDevice(t)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			r := rng.New(seed)
			buf := alignedbuf.Alloc(int(d.ReadBytes))
			for i := 0; i < 50; i++ {
				off := d.RandomReadOffset(r)
				if _, err := d.Read(off, buf); err != nil {
					t.Errorf("Read: %v", err)
				}
			}
		}(uint64(g))
	}
	wg.Wait()
}
