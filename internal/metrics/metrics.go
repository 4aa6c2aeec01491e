package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kstaniek/go-canaddr/internal/logging"
)

// Prometheus counters
var (
	SLCANRxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slcan_rx_frames_total",
		Help: "Total CAN frames decoded from the SLCAN serial link.",
	})
	SLCANTxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slcan_tx_frames_total",
		Help: "Total CAN frames written to the SLCAN serial link.",
	})
	SocketCANRxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socketcan_rx_frames_total",
		Help: "Total CAN frames read from the SocketCAN interface.",
	})
	SocketCANTxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socketcan_tx_frames_total",
		Help: "Total CAN frames written to the SocketCAN interface.",
	})
	FramesScreened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_screened_total",
		Help: "Total received frames evaluated against the active filter set.",
	})
	FramesMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frames_matched_total",
		Help: "Total frames accepted by a filter, by filter kind.",
	}, []string{"filter"})
	MalformedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "malformed_frames_total",
		Help: "Total rejected malformed frames (framing violations, invalid length, truncated).",
	})
	HubDroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_dropped_frames_total",
		Help: "Total CAN frames dropped by the hub due to slow subscribers.",
	})
	HubKickedSubs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_kicked_subscribers_total",
		Help: "Total subscribers detached due to backpressure kick policy.",
	})
	HubActiveSubs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_active_subscribers",
		Help: "Current number of registered hub subscribers.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrSLCANRead         = "slcan_read"
	ErrSLCANWrite        = "slcan_write"
	ErrSLCANOverflow     = "slcan_tx_overflow"
	ErrSocketCANRead     = "socketcan_read"
	ErrSocketCANWrite    = "socketcan_write"
	ErrSocketCANOverflow = "socketcan_tx_overflow"
	ErrMDNS              = "mdns"
)

// Filter label constants for FramesMatched.
const (
	FilterOBDStandard = "obd_standard"
	FilterOBDExtended = "obd_extended"
	FilterCustom      = "custom"
)

// StartHTTP serves Prometheus metrics at /metrics and a readiness probe
// at /ready on the given address.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters for easy logging (avoid Prometheus scraping in-process)
var (
	localSLCANRx     uint64
	localSLCANTx     uint64
	localSocketCANRx uint64
	localSocketCANTx uint64
	localScreened    uint64
	localMatched     uint64
	localMalformed   uint64
	localHubDrop     uint64
	localHubKick     uint64
	localHubSubs     uint64
	localErrors      uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	SLCANRx     uint64
	SLCANTx     uint64
	SocketCANRx uint64
	SocketCANTx uint64
	Screened    uint64
	Matched     uint64
	Malformed   uint64
	HubDrops    uint64
	HubKicks    uint64
	HubSubs     uint64
	Errors      uint64 // sum across error labels
}

func Snap() Snapshot {
	return Snapshot{
		SLCANRx:     atomic.LoadUint64(&localSLCANRx),
		SLCANTx:     atomic.LoadUint64(&localSLCANTx),
		SocketCANRx: atomic.LoadUint64(&localSocketCANRx),
		SocketCANTx: atomic.LoadUint64(&localSocketCANTx),
		Screened:    atomic.LoadUint64(&localScreened),
		Matched:     atomic.LoadUint64(&localMatched),
		Malformed:   atomic.LoadUint64(&localMalformed),
		HubDrops:    atomic.LoadUint64(&localHubDrop),
		HubKicks:    atomic.LoadUint64(&localHubKick),
		HubSubs:     atomic.LoadUint64(&localHubSubs),
		Errors:      atomic.LoadUint64(&localErrors),
	}
}

// Wrapper helpers to keep call sites simple.
func IncSLCANRx() {
	SLCANRxFrames.Inc()
	atomic.AddUint64(&localSLCANRx, 1)
}

func IncSLCANTx() {
	SLCANTxFrames.Inc()
	atomic.AddUint64(&localSLCANTx, 1)
}

func IncSocketCANRx() {
	SocketCANRxFrames.Inc()
	atomic.AddUint64(&localSocketCANRx, 1)
}

func IncSocketCANTx() {
	SocketCANTxFrames.Inc()
	atomic.AddUint64(&localSocketCANTx, 1)
}

func IncScreened() {
	FramesScreened.Inc()
	atomic.AddUint64(&localScreened, 1)
}

// IncMatched records a filter hit under the given filter label.
func IncMatched(filter string) {
	FramesMatched.WithLabelValues(filter).Inc()
	atomic.AddUint64(&localMatched, 1)
}

func IncMalformed() {
	MalformedFrames.Inc()
	atomic.AddUint64(&localMalformed, 1)
}

func IncHubDrop() {
	HubDroppedFrames.Inc()
	atomic.AddUint64(&localHubDrop, 1)
}

func IncHubKick() {
	HubKickedSubs.Inc()
	atomic.AddUint64(&localHubKick, 1)
}

func SetHubSubs(n int) {
	HubActiveSubs.Set(float64(n))
	atomic.StoreUint64(&localHubSubs, uint64(n))
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	// Pre-register the known label series so the first event does not
	// pay registration latency.
	for _, lbl := range []string{
		ErrSLCANRead, ErrSLCANWrite, ErrSLCANOverflow,
		ErrSocketCANRead, ErrSocketCANWrite, ErrSocketCANOverflow,
		ErrMDNS,
	} {
		Errors.WithLabelValues(lbl).Add(0)
	}
	for _, lbl := range []string{FilterOBDStandard, FilterOBDExtended, FilterCustom} {
		FramesMatched.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil { // if not set yet, treat as ready so metrics endpoint doesn't flap
		return true
	}
	return fn()
}
