package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	backend         string
	canIf           string
	serialDev       string
	baud            int
	serialReadTO    time.Duration
	mode            string
	customFilters   string
	kernelFilter    bool
	probe           bool
	probeInterval   time.Duration
	logFormat       string
	logLevel        string
	metricsAddr     string
	logMetricsEvery time.Duration
	hubBuffer       int
	hubPolicy       string
	mdnsEnable      bool
	mdnsName        string
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	backend := flag.String("backend", "socketcan", "CAN backend: slcan|socketcan (default socketcan)")
	canIf := flag.String("can-if", "can0", "SocketCAN interface (when --backend=socketcan)")
	serialDev := flag.String("serial", "/dev/ttyUSB0", "Serial device path (when --backend=slcan)")
	baud := flag.Int("baud", 115200, "Serial baud rate")
	serialReadTO := flag.Duration("serial-read-timeout", 50*time.Millisecond, "Serial read timeout")
	mode := flag.String("mode", "both", "OBD addressing mode to screen for: standard|extended|both")
	customFilters := flag.String("filters", "", "Extra id:mask filter pairs in hex, comma separated (e.g. 7E8:7F8,18DAF100:1FFFFF00)")
	kernelFilter := flag.Bool("kernel-filter", true, "Install the filter set kernel-side (socketcan backend only)")
	probe := flag.Bool("probe", false, "Periodically send the OBD broadcast query to discover devices")
	probeInterval := flag.Duration("probe-interval", 5*time.Second, "Interval between broadcast probes (with --probe)")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	logMetricsEvery := flag.Duration("log-metrics-interval", 0, "If >0, periodically log metrics counters (for non-Prometheus setups)")
	hubBuf := flag.Int("hub-buffer", 512, "Per-subscriber hub buffer (frames)")
	hubPolicy := flag.String("hub-policy", "drop", "Backpressure policy: drop|kick")
	mdnsEnable := flag.Bool("mdns-enable", false, "Enable mDNS/Avahi advertisement of the metrics endpoint")
	mdnsName := flag.String("mdns-name", "", "mDNS instance name (default obd-scan-<hostname>)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Track which flags were explicitly set to give them precedence over env.
	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })
	cfg.backend = *backend
	cfg.canIf = *canIf
	cfg.serialDev = *serialDev
	cfg.baud = *baud
	cfg.serialReadTO = *serialReadTO
	cfg.mode = *mode
	cfg.customFilters = *customFilters
	cfg.kernelFilter = *kernelFilter
	cfg.probe = *probe
	cfg.probeInterval = *probeInterval
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.logMetricsEvery = *logMetricsEvery
	cfg.hubBuffer = *hubBuf
	cfg.hubPolicy = *hubPolicy
	cfg.mdnsEnable = *mdnsEnable
	cfg.mdnsName = *mdnsName

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to open devices or listeners – only checks values/ranges.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.backend {
	case "slcan", "socketcan":
	default:
		return fmt.Errorf("invalid backend: %s", c.backend)
	}
	switch c.mode {
	case "standard", "extended", "both":
	default:
		return fmt.Errorf("invalid mode: %s", c.mode)
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	switch c.hubPolicy {
	case "drop", "kick":
	default:
		return fmt.Errorf("invalid hub-policy: %s", c.hubPolicy)
	}
	if c.hubBuffer <= 0 {
		return fmt.Errorf("hub-buffer must be > 0 (got %d)", c.hubBuffer)
	}
	if c.baud <= 0 {
		return fmt.Errorf("baud must be > 0 (got %d)", c.baud)
	}
	if c.serialReadTO <= 0 {
		return fmt.Errorf("serial-read-timeout must be > 0")
	}
	if c.probeInterval <= 0 {
		return fmt.Errorf("probe-interval must be > 0")
	}
	if _, err := parseCustomFilters(c.customFilters); err != nil {
		return err
	}
	return nil
}

// applyEnvOverrides maps OBD_SCAN_* environment variables to config fields
// unless a corresponding flag was explicitly set. Boolean & numeric parsing is lax:
// empty values ignored. Duration accepts Go time.ParseDuration format.
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	// Only apply if NOT in set (flag wins).
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }
	str := func(flagName, env string, dst *string) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(flagName, env string, dst *bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	duration := func(flagName, env string, dst *time.Duration, allowZero bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			d, err := time.ParseDuration(v)
			switch {
			case err != nil:
				if firstErr == nil {
					firstErr = fmt.Errorf("invalid %s: %w", env, err)
				}
			case d > 0 || (allowZero && d == 0):
				*dst = d
			}
		}
	}
	integer := func(flagName, env string, dst *int) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid %s: %w", env, err)
			}
		}
	}

	str("backend", "OBD_SCAN_BACKEND", &c.backend)
	str("can-if", "OBD_SCAN_IF", &c.canIf)
	str("serial", "OBD_SCAN_SERIAL", &c.serialDev)
	integer("baud", "OBD_SCAN_BAUD", &c.baud)
	duration("serial-read-timeout", "OBD_SCAN_SERIAL_READ_TIMEOUT", &c.serialReadTO, false)
	str("mode", "OBD_SCAN_MODE", &c.mode)
	str("filters", "OBD_SCAN_FILTERS", &c.customFilters)
	boolean("kernel-filter", "OBD_SCAN_KERNEL_FILTER", &c.kernelFilter)
	boolean("probe", "OBD_SCAN_PROBE", &c.probe)
	duration("probe-interval", "OBD_SCAN_PROBE_INTERVAL", &c.probeInterval, false)
	str("log-format", "OBD_SCAN_LOG_FORMAT", &c.logFormat)
	str("log-level", "OBD_SCAN_LOG_LEVEL", &c.logLevel)
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("OBD_SCAN_METRICS"); ok {
			c.metricsAddr = v
		}
	}
	duration("log-metrics-interval", "OBD_SCAN_LOG_METRICS_INTERVAL", &c.logMetricsEvery, true)
	integer("hub-buffer", "OBD_SCAN_HUB_BUFFER", &c.hubBuffer)
	str("hub-policy", "OBD_SCAN_HUB_POLICY", &c.hubPolicy)
	boolean("mdns-enable", "OBD_SCAN_MDNS_ENABLE", &c.mdnsEnable)
	str("mdns-name", "OBD_SCAN_MDNS_NAME", &c.mdnsName)
	return firstErr
}
