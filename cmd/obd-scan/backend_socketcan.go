//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/hub"
	"github.com/kstaniek/go-canaddr/internal/metrics"
	"github.com/kstaniek/go-canaddr/socketcan"
)

// openSocketCANDevice is a hook for tests (overridden in unit tests).
var openSocketCANDevice = func(iface string) (socketcan.Dev, error) { return socketcan.Open(iface) }

// initSocketCANBackend sets up the SocketCAN backend, launching the RX loop.
// When kernelFilters is non-empty the set is installed socket-side, so the
// kernel discards non-matching frames before they ever reach userspace.
func initSocketCANBackend(ctx context.Context, cfg *appConfig, h *hub.Hub, kernelFilters []canaddr.Filter, l *slog.Logger, wg *sync.WaitGroup) (func(canaddr.Frame) error, func(), error) {
	dev, err := openSocketCANDevice(cfg.canIf)
	if err != nil {
		return nil, func() {}, fmt.Errorf("socketcan open %s: %w", cfg.canIf, err)
	}
	l.Info("socketcan_open", "if", cfg.canIf)
	if len(kernelFilters) > 0 {
		if err := dev.SetFilters(kernelFilters); err != nil {
			_ = dev.Close()
			return nil, func() {}, fmt.Errorf("socketcan set filters: %w", err)
		}
		l.Info("socketcan_kernel_filter", "count", len(kernelFilters))
	}
	tw := socketcan.NewTXWriter(ctx, dev, txQueueSize)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer l.Info("socketcan_rx_end")
		backoff := rxBackoffMin
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			fr, err := dev.ReadFrame()
			if err != nil {
				if ctx.Err() != nil { // shutting down
					return
				}
				metrics.IncError(metrics.ErrSocketCANRead)
				l.Warn("socketcan_read_error", "error", err, "backoff", backoff)
				sleepFn(backoff)
				backoff *= 2
				if backoff > rxBackoffMax {
					backoff = rxBackoffMax
				}
				continue
			}
			metrics.IncSocketCANRx()
			metrics.IncScreened()
			h.Broadcast(fr)
			backoff = rxBackoffMin
		}
	}()
	return tw.SendFrame, func() { _ = dev.Close(); tw.Close() }, nil
}
