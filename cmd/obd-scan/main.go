package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/metrics"
)

// Helper implementations live in dedicated files: version.go, config.go,
// logger.go, hub_init.go, screener.go, metrics_logger.go, backend.go,
// probe.go, mdns.go.

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("obd-scan %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(2)
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)
	h := initHub(cfg, l)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	startMetricsLogger(ctx, cfg.logMetricsEvery, l, &wg)

	filters, err := buildFilters(cfg)
	if err != nil {
		l.Error("filter_config_error", "error", err)
		os.Exit(2)
	}
	if len(filters) == 0 {
		l.Error("filter_config_error", "error", "empty filter set")
		os.Exit(2)
	}
	var kernelFilters []canaddr.Filter
	if cfg.kernelFilter {
		for _, sf := range filters {
			kernelFilters = append(kernelFilters, sf.filter)
		}
	}
	sendFunc, cleanup, berr := initBackend(ctx, cfg, h, kernelFilters, l, &wg)
	if berr != nil {
		l.Error("backend_init_error", "error", berr)
		os.Exit(1)
	}
	startScreeners(ctx, h, filters, cfg.hubBuffer, l, &wg)
	startProber(ctx, cfg, sendFunc, l, &wg)

	// Ready once the backend is up and the context not cancelled.
	metrics.SetReadinessFunc(func() bool { return ctx.Err() == nil })
	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		srvHTTP := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srvHTTP.Shutdown(context.Background()) }()

		if cleanupMDNS, err := startMDNS(ctx, cfg, metricsPort(cfg.metricsAddr)); err != nil {
			metrics.IncError(metrics.ErrMDNS)
			l.Warn("mdns_start_failed", "error", err)
		} else if cfg.mdnsEnable {
			l.Info("mdns_started", "service", mdnsServiceType, "name", cfg.mdnsName)
			defer cleanupMDNS()
		}
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	l.Info("shutdown_signal", "signal", s.String())
	cancel()
	cleanup()
	wg.Wait()
}

// metricsPort extracts the port number from a listen address like ":9100".
func metricsPort(addr string) int {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		if pn, perr := strconv.Atoi(p); perr == nil {
			return pn
		}
	}
	return 0
}
