//go:build !linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/hub"
)

// Placeholder so non-linux builds compile; socketcan not supported.
func initSocketCANBackend(ctx context.Context, cfg *appConfig, h *hub.Hub, kernelFilters []canaddr.Filter, l *slog.Logger, wg *sync.WaitGroup) (func(canaddr.Frame) error, func(), error) {
	return nil, func() {}, fmt.Errorf("socketcan backend unsupported on this platform")
}
