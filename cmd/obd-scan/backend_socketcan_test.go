//go:build linux

package main

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/hub"
	"github.com/kstaniek/go-canaddr/internal/metrics"
	"github.com/kstaniek/go-canaddr/socketcan"
)

type fakeSocketDev struct {
	frames   []canaddr.Frame
	idx      int
	errAfter bool
	filters  []canaddr.Filter
}

func (d *fakeSocketDev) ReadFrame() (canaddr.Frame, error) {
	if d.idx < len(d.frames) {
		fr := d.frames[d.idx]
		d.idx++
		return fr, nil
	}
	if d.errAfter {
		return canaddr.Frame{}, io.ErrUnexpectedEOF
	}
	time.Sleep(10 * time.Millisecond)
	return canaddr.Frame{}, io.EOF
}
func (d *fakeSocketDev) WriteFrame(fr canaddr.Frame) error    { return nil }
func (d *fakeSocketDev) SetFilters(fs []canaddr.Filter) error { d.filters = fs; return nil }
func (d *fakeSocketDev) Close() error                         { return nil }

func TestInitSocketCANBackendBasic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frame := canaddr.NewFrame(canaddr.Standard(canaddr.MustStandardID(0x7E8)), []byte{0x01, 0x02, 0x03})
	dev := &fakeSocketDev{frames: []canaddr.Frame{frame}, errAfter: true}

	openSocketCANDevice = func(iface string) (socketcan.Dev, error) { return dev, nil }
	defer func() {
		openSocketCANDevice = func(iface string) (socketcan.Dev, error) { return socketcan.Open(iface) }
	}()

	h := hub.New()
	sub := hub.NewSubscriber(canaddr.Any(), 1)
	h.Add(sub)
	cfg := &appConfig{backend: "socketcan", canIf: "vcan0"}
	kernel := []canaddr.Filter{canaddr.Identity(frame.ID())}
	var wg sync.WaitGroup
	send, cleanup, err := initSocketCANBackend(ctx, cfg, h, kernel, testLogger(), &wg)
	if err != nil {
		t.Fatalf("initSocketCANBackend: %v", err)
	}
	defer cleanup()

	if len(dev.filters) != 1 {
		t.Fatalf("expected kernel filter installed, got %d", len(dev.filters))
	}

	select {
	case fr := <-sub.Out:
		if fr.ID() != frame.ID() || len(fr.Data()) != 3 {
			t.Fatalf("unexpected frame: %v % X", fr.ID(), fr.Data())
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for socketcan frame")
	}

	if err := send(frame); err != nil {
		t.Fatalf("send frame: %v", err)
	}
	// Allow read error path to trigger once.
	time.Sleep(30 * time.Millisecond)
	snap := metrics.Snap()
	if snap.SocketCANRx == 0 {
		t.Fatalf("expected SocketCANRx > 0")
	}
	if snap.Errors == 0 {
		t.Fatalf("expected at least one error increment (read error after frame)")
	}
}
