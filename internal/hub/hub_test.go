package hub

import (
	"testing"
	"time"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/obd"
)

func stdFrame(v uint16) canaddr.Frame {
	return canaddr.NewFrame(canaddr.Standard(canaddr.MustStandardID(v)), nil)
}

func TestHub_Broadcast_ScreensByFilter(t *testing.T) {
	h := New()
	responses := NewSubscriber(obd.StandardResponseFilter(), 16)
	everything := NewSubscriber(canaddr.Any(), 16)
	h.Add(responses)
	h.Add(everything)
	defer h.Remove(responses)
	defer h.Remove(everything)

	h.Broadcast(stdFrame(0x7E8)) // in the response band
	h.Broadcast(stdFrame(0x123)) // not

	if got := len(responses.Out); got != 1 {
		t.Fatalf("filtered subscriber got %d frames, want 1", got)
	}
	if got := len(everything.Out); got != 2 {
		t.Fatalf("unfiltered subscriber got %d frames, want 2", got)
	}
	fr := <-responses.Out
	if fr.ID().Raw() != 0x7E8 {
		t.Fatalf("filtered subscriber got id 0x%X, want 0x7E8", fr.ID().Raw())
	}
}

func TestHub_Broadcast_DropDoesNotBlock(t *testing.T) {
	h := New()
	s := NewSubscriber(canaddr.Any(), 4)
	h.Add(s)
	defer h.Remove(s)

	// Don't read from s.Out to simulate a slow subscriber.
	start := time.Now()
	for i := 0; i < 1000; i++ {
		h.Broadcast(stdFrame(0x123))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Broadcast took too long: %s", elapsed)
	}
	if len(s.Out) != cap(s.Out) {
		t.Fatalf("expected subscriber buffer to be full, got len=%d cap=%d", len(s.Out), cap(s.Out))
	}
}

func TestHub_Broadcast_KickClosesSlowSubscriber(t *testing.T) {
	h := New()
	h.Policy = PolicyKick
	s := NewSubscriber(canaddr.Any(), 1)
	h.Add(s)
	defer h.Remove(s)

	h.Broadcast(stdFrame(0x1)) // fills the buffer
	h.Broadcast(stdFrame(0x2)) // overflows; subscriber must be kicked

	select {
	case <-s.Closed:
	default:
		t.Fatal("slow subscriber was not closed under kick policy")
	}
}

func TestHub_Broadcast_DropKeepsOthersFlowing(t *testing.T) {
	h := New()
	slow := NewSubscriber(canaddr.Any(), 1)
	fast := NewSubscriber(canaddr.Any(), 16)
	h.Add(slow)
	h.Add(fast)
	defer h.Remove(slow)
	defer h.Remove(fast)

	// Fill slow's buffer, then burst.
	for i := 0; i < 10; i++ {
		h.Broadcast(stdFrame(0x2))
	}
	if len(fast.Out) != 10 {
		t.Fatalf("fast subscriber got %d frames while slow was backpressured, want 10", len(fast.Out))
	}
}
