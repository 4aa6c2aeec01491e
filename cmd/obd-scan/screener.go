package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/hub"
	"github.com/kstaniek/go-canaddr/internal/metrics"
	"github.com/kstaniek/go-canaddr/obd"
)

// screenFilter is one labeled acceptance filter of the active set.
type screenFilter struct {
	label  string
	filter canaddr.Filter
}

// buildFilters assembles the filter set from the addressing mode and
// any custom id:mask pairs.
func buildFilters(cfg *appConfig) ([]screenFilter, error) {
	var set []screenFilter
	if cfg.mode == "standard" || cfg.mode == "both" {
		set = append(set, screenFilter{label: metrics.FilterOBDStandard, filter: obd.StandardResponseFilter()})
	}
	if cfg.mode == "extended" || cfg.mode == "both" {
		set = append(set, screenFilter{label: metrics.FilterOBDExtended, filter: obd.ExtendedResponseFilter()})
	}
	custom, err := parseCustomFilters(cfg.customFilters)
	if err != nil {
		return nil, err
	}
	for _, f := range custom {
		set = append(set, screenFilter{label: metrics.FilterCustom, filter: f})
	}
	return set, nil
}

// parseCustomFilters parses comma-separated id:mask pairs. Both halves
// are hex words in the packed SocketCAN layout, so an extended-frame
// filter sets bit 31 of the id half.
func parseCustomFilters(s string) ([]canaddr.Filter, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []canaddr.Filter
	for _, pair := range strings.Split(s, ",") {
		idStr, maskStr, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q (want id:mask)", pair)
		}
		idWord, err := strconv.ParseUint(idStr, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid filter id %q: %w", idStr, err)
		}
		maskWord, err := strconv.ParseUint(maskStr, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid filter mask %q: %w", maskStr, err)
		}
		out = append(out, canaddr.NewFilter(canaddr.FromRaw(uint32(idWord)), canaddr.NewMask(uint32(maskWord))))
	}
	return out, nil
}

// startScreeners registers one hub subscriber per filter and launches a
// goroutine logging its matches. Response-band hits are resolved to the
// request address they answer.
func startScreeners(ctx context.Context, h *hub.Hub, set []screenFilter, buffer int, l *slog.Logger, wg *sync.WaitGroup) {
	for _, sf := range set {
		sf := sf
		sub := hub.NewSubscriber(sf.filter, buffer)
		h.Add(sub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer h.Remove(sub)
			for {
				select {
				case <-ctx.Done():
					return
				case <-sub.Closed:
					l.Warn("screener_kicked", "filter", sf.label)
					return
				case fr := <-sub.Out:
					metrics.IncMatched(sf.label)
					logMatch(l, sf.label, fr)
				}
			}
		}()
	}
}

func logMatch(l *slog.Logger, label string, fr canaddr.Frame) {
	attrs := []any{
		"filter", label,
		"id", fr.ID().String(),
		"data", fmt.Sprintf("% X", fr.Data()),
	}
	switch {
	case fr.IsErrorFrame():
		attrs = append(attrs, "type", "error")
	case fr.IsRemoteFrame():
		attrs = append(attrs, "type", "remote")
	default:
		attrs = append(attrs, "type", "data")
	}
	if rsp, err := obd.ResponseFromID(fr.ID()); err == nil {
		attrs = append(attrs, "answers", rsp.Request().String())
	}
	l.Info("match", attrs...)
}
