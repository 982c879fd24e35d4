package act

import (
	"context"
	"io"
	"strings"

	"github.com/act-storage/act/internal/histogram"
	"github.com/act-storage/act/internal/iodev"
	"github.com/act-storage/act/internal/logging"
	"github.com/act-storage/act/internal/scheduler"
	"github.com/act-storage/act/internal/signalbridge"
	"github.com/act-storage/act/internal/workload"
)

// deviceOpenPoolCapacity bounds how many concurrently open direct-I/O
// descriptors each device keeps recycled, sized generously against the
// largest reasonable worker-pool fan-out without pinning an unbounded
// number of file descriptors.
const deviceOpenPoolCapacity = 256

// Run opens every configured device, wires the workload engine described
// by cfg, and drives it for cfg.TestDurationSec seconds (or until an
// overload or ctx cancellation stops it early). It writes periodic report
// blocks to reportOut if non-nil. Devices are always closed before Run
// returns, even on error.
func Run(ctx context.Context, cfg Config, log *logging.Logger, reportOut io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	scale := histogram.ScaleMillisecond
	if cfg.MicrosecondHistograms {
		scale = histogram.ScaleMicrosecond
	}

	devices, err := openDevices(cfg, scale)
	if err != nil {
		closeDevices(devices)
		return err
	}
	defer closeDevices(devices)

	if log != nil {
		for _, d := range devices {
			log.DeviceReady(d.Name, d.SizeBytes, int(d.MinOpBytes))
		}
	}

	for _, path := range cfg.DeviceNames {
		if err := scheduler.Apply(path, cfg.SchedulerMode); err != nil && log != nil {
			log.WithDevice(0).Warnf("scheduler mode %s not applied to %s: %v", cfg.SchedulerMode, path, err)
		}
	}

	return RunDevices(ctx, cfg, devices, log, reportOut)
}

// RunDevices drives the workload engine against an already-open set of
// devices, skipping device discovery and sysfs scheduler configuration.
// Run uses it internally after opening real block devices; integration
// tests use it directly with iodev.OpenMem stand-ins, since internal
// packages are importable from anywhere inside this module.
func RunDevices(ctx context.Context, cfg Config, devices []*iodev.Device, log *logging.Logger, reportOut io.Writer) error {
	scale := histogram.ScaleMillisecond
	if cfg.MicrosecondHistograms {
		scale = histogram.ScaleMicrosecond
	}

	wcfg := workload.Config{
		Devices:             devices,
		NumQueues:           int(cfg.NumQueues),
		ThreadsPerQueue:     int(cfg.ThreadsPerQueue),
		ReadReqsPerSec:      cfg.ReadReqsPerSec,
		LargeBlockOpsPerSec: cfg.LargeBlockOpsPerSec(),
		LargeBlockBytes:     cfg.LargeBlockBytes(),
		RecordBytes:         cfg.RecordBytes,
		ReportIntervalSec:   cfg.ReportIntervalSec,
		MaxReqsQueued:       int32(cfg.MaxReqsQueued),
		MaxLagSec:           cfg.MaxLagSec,
		Scale:               scale,
	}
	rc := workload.NewRunContext(wcfg, log)

	stopSignals := signalbridge.Watch(&rc.Running, func(signalName string) {
		if log != nil {
			log.Infof("received %s, shutting down", signalName)
		}
	})
	defer stopSignals()

	done := make(chan struct{})
	go func() {
		workload.Run(rc, cfg.TestDurationSec, reportOut)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		rc.Running.Store(false)
		<-done
	}

	if reason := rc.OverloadReason(); reason != "" {
		return NewError("run", ErrCodeOverload, reason)
	}
	return nil
}

// openDevices opens every device named in cfg, closing any already-opened
// device and returning a *Error on the first failure.
func openDevices(cfg Config, scale histogram.Scale) ([]*iodev.Device, error) {
	devices := make([]*iodev.Device, 0, len(cfg.DeviceNames))
	for i, path := range cfg.DeviceNames {
		d, err := iodev.OpenReal(path, i, cfg.LargeBlockBytes(), cfg.RecordBytes, cfg.DisableODSync, deviceOpenPoolCapacity, scale)
		if err != nil {
			return devices, deviceOpenError(path, err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func closeDevices(devices []*iodev.Device) {
	for _, d := range devices {
		d.Close()
	}
}

// deviceOpenError maps a device-open failure to the two device-related
// codes the reference tool distinguishes: unreadable/unopenable versus
// too small to hold a single large block.
func deviceOpenError(path string, err error) error {
	if actErr, ok := err.(*Error); ok {
		return actErr
	}
	msg := err.Error()
	if isDeviceTooSmall(msg) {
		return NewDeviceError("open device", path, ErrCodeDeviceTooSmall, msg)
	}
	return NewDeviceError("open device", path, ErrCodeDeviceUnreadable, msg)
}

func isDeviceTooSmall(msg string) bool {
	return strings.Contains(msg, "too small") || strings.Contains(msg, "zero large blocks")
}
