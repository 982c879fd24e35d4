package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	act "github.com/act-storage/act"
	"github.com/act-storage/act/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "path to a configuration file")
		verbose    = flag.Bool("v", false, "verbose (debug-level) logging")

		deviceNames     = flag.String("device-names", "", "comma-separated device paths (overrides config file)")
		testDurationSec = flag.Uint("test-duration-sec", 0, "total run length in seconds (overrides config file)")
		readReqsPerSec  = flag.Uint("read-reqs-per-sec", 0, "aggregate transaction-read rate (overrides config file)")
		writeReqsPerSec = flag.Uint("write-reqs-per-sec", 0, "aggregate write rate the large-block rate is derived from (a non-zero value overrides config file)")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Errorf("loading configuration: %v", err)
		return -1
	}

	if *deviceNames != "" {
		cfg.DeviceNames = splitFlagList(*deviceNames)
	}
	if *testDurationSec != 0 {
		cfg.TestDurationSec = uint32(*testDurationSec)
	}
	if *readReqsPerSec != 0 {
		cfg.ReadReqsPerSec = uint32(*readReqsPerSec)
	}
	if *writeReqsPerSec != 0 {
		cfg.WriteReqsPerSec = uint32(*writeReqsPerSec)
	}

	if err := cfg.Validate(); err != nil {
		logger.Errorf("invalid configuration: %v", err)
		return -1
	}

	fmt.Printf("act-storage: %d device(s), %ds duration, %d reads/sec, %d writes/sec\n",
		len(cfg.DeviceNames), cfg.TestDurationSec, cfg.ReadReqsPerSec, cfg.WriteReqsPerSec)
	fmt.Printf("send SIGUSR1 (kill -USR1 %d) to dump goroutine stacks\n", os.Getpid())

	if err := act.Run(context.Background(), cfg, logger, os.Stdout); err != nil {
		if act.IsCode(err, act.ErrCodeOverload) {
			logger.Errorf("overload: %v", err)
			return -1
		}
		logger.Errorf("run failed: %v", err)
		return -1
	}
	return 0
}

// loadConfig returns act.DefaultConfig() when path is empty, otherwise
// parses the file at path with act.LoadConfigFile.
func loadConfig(path string) (act.Config, error) {
	if path == "" {
		return act.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return act.Config{}, err
	}
	defer f.Close()
	return act.LoadConfigFile(f)
}

func splitFlagList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
