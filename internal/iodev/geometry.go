//go:build linux

package iodev

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/act-storage/act/internal/alignedbuf"
)

const (
	loIOMinSize = 512
	hiIOMinSize = 4096
)

// probeSizeBytes queries a block device's byte size via BLKGETSIZE64.
// golang.org/x/sys/unix defines the ioctl request number but not a typed
// wrapper for it (BLKGETSIZE64 takes a uint64 out-pointer, not the int
// IoctlGetInt expects), so the syscall is issued directly.
func probeSizeBytes(fd int) (uint64, error) {
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.BLKGETSIZE64), uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, fmt.Errorf("BLKGETSIZE64: %w", errno)
	}
	return size, nil
}

// discoverMinOpBytes finds the smallest direct-I/O block size the device
// accepts, trying power-of-two sizes from 512 up to 4096 bytes. The first
// size that reads in full is the device's minimum I/O granularity.
func discoverMinOpBytes(fd int) (uint32, error) {
	if _, err := unix.Seek(fd, 0, unix.SEEK_SET); err != nil {
		return 0, fmt.Errorf("seek: %w", err)
	}

	buf := alignedbuf.Alloc(hiIOMinSize)

	for size := loIOMinSize; size <= hiIOMinSize; size *= 2 {
		n, err := unix.Pread(fd, buf[:size], 0)
		if err == nil && n == size {
			return uint32(size), nil
		}
	}

	return 0, fmt.Errorf("no direct read size between %d and %d bytes succeeded", loIOMinSize, hiIOMinSize)
}
