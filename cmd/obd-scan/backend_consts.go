package main

import "time"

const (
	txQueueSize       = 1024 // capacity of async TX ring
	serialReadBufSize = 4096 // per read() buffer for slcan backend
	// largeBufferReclaimThreshold is the capacity above which the temporary
	// slcan RX accumulation buffer is discarded and reallocated once empty.
	// This prevents pathological growth (e.g., after bursts of adapter
	// chatter or line noise) from permanently retaining large backing
	// arrays. 16 KiB chosen as a balance: comfortably larger than typical
	// aggregated frame bursts yet small enough to free memory if garbage
	// accumulates.
	largeBufferReclaimThreshold = 16 * 1024
	rxBackoffMin                = 20 * time.Millisecond
	rxBackoffMax                = 500 * time.Millisecond
)
