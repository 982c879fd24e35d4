package act

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/act-storage/act/internal/scheduler"
)

// LoadConfigFile reads the reference tool's line-oriented configuration
// format: one "key: value" setting per line, case-insensitive keys, "#"
// starts a comment that runs to end of line, and blank lines are
// ignored. It is not YAML (see DESIGN.md for why gopkg.in/yaml.v3, an
// indirect dependency, is not used here) — the reference format predates
// YAML adoption in this tool family and has no nesting, lists-of-maps,
// or multi-document support, so a full YAML parser buys nothing.
func LoadConfigFile(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Config{}, NewError("config file parse", ErrCodeConfigInvalid,
				fmt.Sprintf("line %d: expected \"key: value\", got %q", lineNo, line))
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if err := applyConfigKey(&cfg, key, value); err != nil {
			return Config{}, NewError("config file parse", ErrCodeConfigInvalid,
				fmt.Sprintf("line %d: %v", lineNo, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, WrapError("config file read", "", err)
	}
	return cfg, nil
}

// stripComment truncates line at the first '#'; quoting is not recognized.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func applyConfigKey(cfg *Config, key, value string) error {
	switch key {
	case "device-names":
		cfg.DeviceNames = splitCommaList(value)
	case "test-duration-sec":
		return setUint32(&cfg.TestDurationSec, value)
	case "read-reqs-per-sec":
		return setUint32(&cfg.ReadReqsPerSec, value)
	case "write-reqs-per-sec":
		return setUint32(&cfg.WriteReqsPerSec, value)
	case "num-queues":
		return setUint32(&cfg.NumQueues, value)
	case "threads-per-queue":
		return setUint32(&cfg.ThreadsPerQueue, value)
	case "report-interval-sec":
		return setUint32(&cfg.ReportIntervalSec, value)
	case "microsecond-histograms":
		return setBool(&cfg.MicrosecondHistograms, value)
	case "record-bytes":
		return setUint32(&cfg.RecordBytes, value)
	case "record-bytes-range-max":
		return setUint32(&cfg.RecordBytesRangeMax, value)
	case "large-block-op-kbytes":
		return setUint32(&cfg.LargeBlockOpKBytes, value)
	case "replication-factor":
		return setUint32(&cfg.ReplicationFactor, value)
	case "update-pct":
		return setUint32(&cfg.UpdatePct, value)
	case "defrag-lwm-pct":
		return setUint32(&cfg.DefragLwmPct, value)
	case "disable-odsync":
		return setBool(&cfg.DisableODSync, value)
	case "commit-to-device":
		return setBool(&cfg.CommitToDevice, value)
	case "commit-min-bytes":
		return setUint32(&cfg.CommitMinBytes, value)
	case "tomb-raider":
		return setBool(&cfg.TombRaider, value)
	case "tomb-raider-sleep-usec":
		return setUint32(&cfg.TombRaiderSleepUsec, value)
	case "max-reqs-queued":
		return setUint32(&cfg.MaxReqsQueued, value)
	case "max-lag-sec":
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("max-lag-sec: %w", err)
		}
		cfg.MaxLagSec = int32(n)
	case "scheduler-mode":
		mode := scheduler.Mode(strings.ToLower(value))
		switch mode {
		case scheduler.ModeNoop, scheduler.ModeCFQ, scheduler.ModeDeadline:
			cfg.SchedulerMode = mode
		default:
			return fmt.Errorf("scheduler-mode: unrecognized value %q", value)
		}
	default:
		return fmt.Errorf("unrecognized key %q", key)
	}
	return nil
}

func splitCommaList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setUint32(dst *uint32, value string) error {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fmt.Errorf("expected non-negative integer, got %q", value)
	}
	*dst = uint32(n)
	return nil
}

func setBool(dst *bool, value string) error {
	switch strings.ToLower(value) {
	case "true", "yes", "1":
		*dst = true
	case "false", "no", "0":
		*dst = false
	default:
		return fmt.Errorf("expected a boolean, got %q", value)
	}
	return nil
}
