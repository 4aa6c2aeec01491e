package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/obd"
)

// probePayload is the functional "supported PIDs" query (service 0x01,
// PID 0x00), padded to the 8-byte DLC legislated testers transmit.
var probePayload = []byte{0x02, 0x01, 0x00, 0x55, 0x55, 0x55, 0x55, 0x55}

// startProber periodically transmits the OBD broadcast query so that
// passively screened ECUs identify themselves. Which broadcast
// addresses are used follows the addressing mode.
func startProber(ctx context.Context, cfg *appConfig, send func(canaddr.Frame) error, l *slog.Logger, wg *sync.WaitGroup) {
	if !cfg.probe {
		return
	}
	var targets []canaddr.ID
	if cfg.mode == "standard" || cfg.mode == "both" {
		targets = append(targets, obd.StandardBroadcast().ID())
	}
	if cfg.mode == "extended" || cfg.mode == "both" {
		targets = append(targets, obd.ExtendedBroadcast().ID())
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(cfg.probeInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				for _, id := range targets {
					fr := canaddr.NewFrame(id, probePayload)
					if err := send(fr); err != nil {
						l.Warn("probe_send_error", "id", id.String(), "error", err)
						continue
					}
					l.Debug("probe_sent", "id", id.String())
				}
			}
		}
	}()
}
