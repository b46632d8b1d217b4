package gate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fairybot/internal/storage"
	logx "fairybot/pkg/logx"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	store, err := storage.Open(storage.Config{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "record.json"),
	}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store, logx.Nop())
}

func TestDateInt(t *testing.T) {
	t.Parallel()
	got := DateInt(time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC))
	if got != 20240615 {
		t.Fatalf("DateInt = %d, want 20240615", got)
	}
}

func TestInWindow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		// 2023-01-03 is a Tuesday, 2023-01-07 a Saturday.
		{name: "tuesday in window", at: time.Date(2023, 1, 3, 13, 45, 0, 0, time.UTC), want: true},
		{name: "tuesday window opens 13:41", at: time.Date(2023, 1, 3, 13, 41, 0, 0, time.UTC), want: true},
		{name: "tuesday 13:40 too early", at: time.Date(2023, 1, 3, 13, 40, 0, 0, time.UTC), want: false},
		{name: "tuesday 13:00 too early", at: time.Date(2023, 1, 3, 13, 0, 0, 0, time.UTC), want: false},
		{name: "tuesday second hour", at: time.Date(2023, 1, 3, 14, 30, 0, 0, time.UTC), want: true},
		{name: "tuesday 14:59 too late", at: time.Date(2023, 1, 3, 14, 59, 0, 0, time.UTC), want: false},
		{name: "tuesday weekend slot closed", at: time.Date(2023, 1, 3, 11, 45, 0, 0, time.UTC), want: false},
		{name: "saturday in window", at: time.Date(2023, 1, 7, 11, 45, 0, 0, time.UTC), want: true},
		{name: "saturday second hour", at: time.Date(2023, 1, 7, 12, 58, 0, 0, time.UTC), want: true},
		{name: "saturday 12:59 too late", at: time.Date(2023, 1, 7, 12, 59, 0, 0, time.UTC), want: false},
		{name: "saturday weekday slot closed", at: time.Date(2023, 1, 7, 13, 45, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.at); got != tt.want {
				t.Fatalf("InWindow(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestIsNewDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := newTestGate(t)
	now := time.Date(2023, 1, 3, 13, 45, 0, 0, time.UTC)

	if !g.IsNewDay(ctx, now) {
		t.Fatal("no record: want new day")
	}

	if err := g.MarkSent(ctx, 20230102); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if !g.IsNewDay(ctx, now) {
		t.Fatal("yesterday's record: want new day")
	}

	if err := g.MarkSent(ctx, 20230103); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if g.IsNewDay(ctx, now) {
		t.Fatal("today's record: want not a new day")
	}
}

func TestShouldSendRequiresBothPredicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := newTestGate(t)

	inWindow := time.Date(2023, 1, 3, 13, 45, 0, 0, time.UTC)
	outOfWindow := time.Date(2023, 1, 3, 9, 0, 0, 0, time.UTC)

	if !g.ShouldSend(ctx, inWindow) {
		t.Fatal("new day + in window: want eligible")
	}
	if g.ShouldSend(ctx, outOfWindow) {
		t.Fatal("out of window: want not eligible")
	}

	if err := g.MarkSent(ctx, 20230103); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	// Idempotence: once today is recorded, the window no longer matters.
	if g.ShouldSend(ctx, inWindow) {
		t.Fatal("already sent today: want not eligible even in window")
	}
}
