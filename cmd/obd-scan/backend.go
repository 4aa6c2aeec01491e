package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/hub"
)

// initBackend selects the backend, starts its RX loop and returns a frame
// sender and cleanup. It returns an error instead of exiting the process
// to allow graceful handling by the caller.
func initBackend(ctx context.Context, cfg *appConfig, h *hub.Hub, kernelFilters []canaddr.Filter, l *slog.Logger, wg *sync.WaitGroup) (func(canaddr.Frame) error, func(), error) {
	switch cfg.backend {
	case "slcan":
		return initSLCANBackend(ctx, cfg, h, l, wg)
	case "socketcan":
		return initSocketCANBackend(ctx, cfg, h, kernelFilters, l, wg)
	default:
		return nil, func() {}, fmt.Errorf("unknown backend %q (use slcan|socketcan)", cfg.backend)
	}
}
