// Package gate decides whether "now" is an eligible moment to announce the
// roster, and tracks the last successfully sent date.
//
// Two independent predicates must both hold: the new-day check (at most one
// send per calendar day) and the time-window check (sends only inside a
// narrow daily interval, shifted earlier on weekends to match the shop's
// opening hours).
package gate

import (
	"context"
	"time"

	"fairybot/internal/storage"
	logx "fairybot/pkg/logx"
)

type Gate struct {
	store storage.Store
	log   logx.Logger
}

func New(store storage.Store, log logx.Logger) *Gate {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Gate{store: store, log: log}
}

// DateInt returns t's calendar date as a fixed-width YYYYMMDD integer.
// The form compares correctly with < and survives the loose on-disk record.
func DateInt(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// InWindow reports whether t falls inside the daily send window:
// 13:41-14:58 on weekdays, 11:41-12:58 on weekends.
func InWindow(t time.Time) bool {
	h, m := t.Hour(), t.Minute()
	if IsWeekend(t) {
		return (h == 11 && m > 40) || (h == 12 && m < 59)
	}
	return (h == 13 && m > 40) || (h == 14 && m < 59)
}

// IsNewDay reports whether no announcement has been delivered today yet.
// A missing or unreadable record counts as a new day (fail open toward
// sending; the worst case is an extra announcement, not a missed one).
func (g *Gate) IsNewDay(ctx context.Context, now time.Time) bool {
	last, ok, err := g.store.LastSent(ctx)
	if err != nil {
		g.log.Warn("send record read failed, assuming new day", logx.Err(err))
		return true
	}
	if !ok {
		return true
	}
	return last < DateInt(now)
}

// ShouldSend reports whether a send attempt may happen at now.
func (g *Gate) ShouldSend(ctx context.Context, now time.Time) bool {
	if !g.IsNewDay(ctx, now) {
		return false
	}
	if !InWindow(now) {
		g.log.Debug("outside send window", logx.String("clock", now.Format("15:04")))
		return false
	}
	return true
}

// MarkSent records date as delivered. This is the only mutation path for
// the record and must run only after a confirmed delivery.
func (g *Gate) MarkSent(ctx context.Context, date int) error {
	return g.store.SetLastSent(ctx, date)
}
