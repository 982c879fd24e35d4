package act

import (
	"errors"
	"fmt"
	"syscall"
)

// Error represents a structured act-storage error with context and errno
// mapping.
type Error struct {
	Op     string    // Operation that failed (e.g., "PROBE_DEVICE", "OPEN_DEVICE")
	Device string    // Device name (empty if not applicable)
	Queue  int       // Queue number (-1 if not applicable)
	Code   ErrorCode // High-level error category
	Errno  syscall.Errno
	Msg    string
	Inner  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Device != "" {
		parts = append(parts, fmt.Sprintf("device=%s", e.Device))
	}
	if e.Queue >= 0 {
		parts = append(parts, fmt.Sprintf("queue=%d", e.Queue))
	}
	if e.Errno != 0 {
		parts = append(parts, fmt.Sprintf("errno=%d", e.Errno))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("act: %s (%s)", msg, joinParts(parts))
	}
	return fmt.Sprintf("act: %s", msg)
}

func joinParts(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support, comparing by category rather than by
// pointer identity so a wrapped syscall.ENOSPC still matches
// ErrCodeIOError-tagged sentinels created elsewhere.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// ErrorCode represents a high-level error category.
type ErrorCode string

const (
	// ErrCodeConfigInvalid marks a rejected configuration value: an
	// out-of-range percentage, a required count or size left at zero, a
	// device list that doesn't parse.
	ErrCodeConfigInvalid ErrorCode = "config invalid"
	// ErrCodeDeviceUnreadable marks a device that could not be opened or
	// whose geometry could not be probed.
	ErrCodeDeviceUnreadable ErrorCode = "device unreadable"
	// ErrCodeDeviceTooSmall marks a device whose size can't hold even one
	// large block of the configured size, or one transaction read.
	ErrCodeDeviceTooSmall ErrorCode = "device too small"
	// ErrCodeIOError marks a read or write that failed once the run was
	// already underway.
	ErrCodeIOError ErrorCode = "i/o error"
	// ErrCodeOverload marks a run that tripped the queued-request or
	// scheduling-lag threshold and is shutting down.
	ErrCodeOverload ErrorCode = "overload"
	// ErrCodeSignal marks a shutdown requested by an external signal.
	ErrCodeSignal ErrorCode = "signal"
)

// NewError creates a new structured error with no device/queue context.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Queue: -1, Code: code, Msg: msg}
}

// NewDeviceError creates a device-scoped error.
func NewDeviceError(op, device string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Device: device, Queue: -1, Code: code, Msg: msg}
}

// NewQueueError creates a queue-scoped error.
func NewQueueError(op, device string, queue int, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Device: device, Queue: queue, Code: code, Msg: msg}
}

// WrapError wraps an existing error with act-storage context, mapping
// syscall errnos to an ErrorCode along the way.
func WrapError(op, device string, inner error) *Error {
	if inner == nil {
		return nil
	}

	if ae, ok := inner.(*Error); ok {
		return &Error{
			Op:     op,
			Device: device,
			Queue:  ae.Queue,
			Code:   ae.Code,
			Errno:  ae.Errno,
			Msg:    ae.Msg,
			Inner:  ae.Inner,
		}
	}

	if errno, ok := inner.(syscall.Errno); ok {
		return &Error{
			Op:     op,
			Device: device,
			Queue:  -1,
			Code:   mapErrnoToCode(errno),
			Errno:  errno,
			Msg:    errno.Error(),
			Inner:  inner,
		}
	}

	return &Error{
		Op:     op,
		Device: device,
		Queue:  -1,
		Code:   ErrCodeIOError,
		Msg:    inner.Error(),
		Inner:  inner,
	}
}

// mapErrnoToCode maps syscall errno to act-storage error codes. Every code
// here is a variant of "the device didn't behave", since by the time a
// syscall errno reaches this function the run is already past config
// validation.
func mapErrnoToCode(errno syscall.Errno) ErrorCode {
	switch errno {
	case syscall.ENOENT, syscall.ENODEV, syscall.ENXIO:
		return ErrCodeDeviceUnreadable
	case syscall.EACCES, syscall.EPERM:
		return ErrCodeDeviceUnreadable
	default:
		return ErrCodeIOError
	}
}

// IsCode checks if an error matches a specific error code
func IsCode(err error, code ErrorCode) bool {
	var actErr *Error
	if errors.As(err, &actErr) {
		return actErr.Code == code
	}
	return false
}

// IsErrno checks if an error matches a specific errno
func IsErrno(err error, errno syscall.Errno) bool {
	var actErr *Error
	if errors.As(err, &actErr) {
		return actErr.Errno == errno
	}
	return false
}
