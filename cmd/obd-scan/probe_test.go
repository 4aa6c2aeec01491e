package main

import (
	"context"
	"sync"
	"testing"
	"time"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/obd"
)

func TestStartProber_BroadcastTargets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := validConfig()
	cfg.probe = true
	cfg.probeInterval = 5 * time.Millisecond
	cfg.mode = "both"

	var mu sync.Mutex
	var sent []canaddr.Frame
	send := func(fr canaddr.Frame) error {
		mu.Lock()
		sent = append(sent, fr)
		mu.Unlock()
		return nil
	}
	var wg sync.WaitGroup
	startProber(ctx, cfg, send, testLogger(), &wg)

	deadline := time.After(300 * time.Millisecond)
	for {
		mu.Lock()
		n := len(sent)
		mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected probes for both broadcast addresses, got %d", n)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	seen := map[canaddr.ID]bool{}
	for _, fr := range sent {
		seen[fr.ID()] = true
		if len(fr.Data()) != 8 || fr.Data()[0] != 0x02 || fr.Data()[1] != 0x01 {
			t.Fatalf("unexpected probe payload: % X", fr.Data())
		}
	}
	if !seen[obd.StandardBroadcast().ID()] || !seen[obd.ExtendedBroadcast().ID()] {
		t.Fatalf("missing broadcast target, saw %v", seen)
	}
}

func TestStartProber_DisabledNoGoroutine(t *testing.T) {
	cfg := validConfig()
	cfg.probe = false
	var wg sync.WaitGroup
	startProber(context.Background(), cfg, func(canaddr.Frame) error {
		t.Fatal("send must not be called when probing is disabled")
		return nil
	}, testLogger(), &wg)
	wg.Wait() // returns immediately; nothing was started
}
