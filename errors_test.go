package act

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredError(t *testing.T) {
	err := NewError("VALIDATE_CONFIG", ErrCodeConfigInvalid, "defrag-lwm-pct out of range")

	assert.Equal(t, "VALIDATE_CONFIG", err.Op)
	assert.Equal(t, ErrCodeConfigInvalid, err.Code)
	assert.Equal(t, "act: defrag-lwm-pct out of range (op=VALIDATE_CONFIG)", err.Error())
}

func TestDeviceAndQueueError(t *testing.T) {
	err := NewDeviceError("PROBE_DEVICE", "/dev/sdb", ErrCodeDeviceUnreadable, "open failed")
	assert.Equal(t, "act: open failed (op=PROBE_DEVICE, device=/dev/sdb)", err.Error())

	qerr := NewQueueError("POP", "/dev/sdb", 2, ErrCodeOverload, "queue starved")
	assert.Equal(t, "act: queue starved (op=POP, device=/dev/sdb, queue=2)", qerr.Error())
}

func TestWrapError(t *testing.T) {
	inner := syscall.ENOENT
	err := WrapError("OPEN_DEVICE", "/dev/sdb", inner)

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDeviceUnreadable, err.Code)
	assert.Equal(t, syscall.ENOENT, err.Errno)
	assert.True(t, errors.Is(err, syscall.ENOENT), "wrapped error should satisfy errors.Is for ENOENT")
}

func TestWrapErrorPreservesStructuredCode(t *testing.T) {
	inner := NewError("PROBE_DEVICE", ErrCodeDeviceTooSmall, "device holds no large blocks")
	err := WrapError("OPEN_DEVICE", "/dev/sdb", inner)

	assert.Equal(t, ErrCodeDeviceTooSmall, err.Code, "wrapped code should survive re-wrap")
	assert.Equal(t, "/dev/sdb", err.Device)
}

func TestErrorIsByCode(t *testing.T) {
	a := &Error{Code: ErrCodeOverload}
	b := &Error{Code: ErrCodeOverload, Op: "different op entirely"}
	c := &Error{Code: ErrCodeIOError}

	assert.True(t, errors.Is(a, b), "errors with the same code should match via errors.Is")
	assert.False(t, errors.Is(a, c), "errors with different codes should not match via errors.Is")
}

func TestIsCode(t *testing.T) {
	err := NewError("RUN", ErrCodeSignal, "terminated by SIGTERM")

	assert.True(t, IsCode(err, ErrCodeSignal))
	assert.False(t, IsCode(err, ErrCodeIOError))
	assert.False(t, IsCode(nil, ErrCodeSignal))
}

func TestIsErrno(t *testing.T) {
	err := WrapError("READ", "/dev/sdb", syscall.EIO)

	assert.True(t, IsErrno(err, syscall.EIO))
	assert.False(t, IsErrno(err, syscall.EPERM))
	assert.False(t, IsErrno(nil, syscall.EIO))
}

func TestErrnoMapping(t *testing.T) {
	testCases := []struct {
		errno    syscall.Errno
		expected ErrorCode
	}{
		{syscall.ENOENT, ErrCodeDeviceUnreadable},
		{syscall.ENODEV, ErrCodeDeviceUnreadable},
		{syscall.EACCES, ErrCodeDeviceUnreadable},
		{syscall.EPERM, ErrCodeDeviceUnreadable},
		{syscall.EIO, ErrCodeIOError},
		{syscall.ETIMEDOUT, ErrCodeIOError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, mapErrnoToCode(tc.errno))
	}
}
