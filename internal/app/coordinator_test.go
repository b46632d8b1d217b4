package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fairybot/internal/gate"
	"fairybot/internal/roster"
	"fairybot/internal/storage"
	kit "fairybot/internal/transport"
	logx "fairybot/pkg/logx"
)

type fakeMenu struct {
	cats []roster.Category
	err  error
}

func (f *fakeMenu) FetchRoster(ctx context.Context) ([]roster.Category, error) {
	return f.cats, f.err
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestCoordinator(t *testing.T, menu menuSource, sender kit.Sender, now *time.Time) (*coordinator, storage.Store) {
	t.Helper()
	store, err := storage.Open(storage.Config{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "record.json"),
	}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &coordinator{
		log:    logx.Nop(),
		menu:   menu,
		sender: sender,
		gate:   gate.New(store, logx.Nop()),
		target: kit.ChatTarget{Chat: "@fairies"},
		loc:    time.UTC,
		now:    func() time.Time { return *now },
	}, store
}

var saturdayRoster = []roster.Category{
	{Name: "20240615午安", Items: []string{"Alice"}},
	{Name: "20240615晚安", Items: []string{"Bob"}},
}

func TestTickDeliversOncePerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	// 2024-06-15 is a Saturday: weekend window, weekend hours.
	now := time.Date(2024, 6, 15, 11, 45, 0, 0, time.UTC)
	sender := &fakeSender{}
	c, store := newTestCoordinator(t, &fakeMenu{cats: saturdayRoster}, sender, &now)

	c.tick(ctx)

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if !strings.HasPrefix(msg, "20240615 出勤的小精靈有：") {
		t.Fatalf("message header wrong: %q", msg)
	}
	if !strings.Contains(msg, "Alice ☀️\nBob 🌙\n") {
		t.Fatalf("names out of order or missing: %q", msg)
	}
	if !strings.Contains(msg, "☀️：12:00 ~ 17:00") {
		t.Fatalf("expected weekend hours: %q", msg)
	}

	date, ok, err := store.LastSent(ctx)
	if err != nil || !ok || date != 20240615 {
		t.Fatalf("record = (%d, %v, %v), want (20240615, true, nil)", date, ok, err)
	}

	// Later the same day, still in window: the record blocks a resend.
	now = time.Date(2024, 6, 15, 12, 10, 0, 0, time.UTC)
	c.tick(ctx)
	if len(sender.sent) != 1 {
		t.Fatalf("second tick resent: %d messages", len(sender.sent))
	}
}

func TestTickOutsideWindow(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	sender := &fakeSender{}
	c, store := newTestCoordinator(t, &fakeMenu{cats: saturdayRoster}, sender, &now)

	c.tick(context.Background())

	if len(sender.sent) != 0 {
		t.Fatalf("sent outside window: %v", sender.sent)
	}
	if _, ok, _ := store.LastSent(context.Background()); ok {
		t.Fatal("record written without a send")
	}
}

func TestRunOnceSkipsStaleRoster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2023, 1, 2, 13, 45, 0, 0, time.UTC)
	sender := &fakeSender{}
	stale := []roster.Category{{Name: "20230101晚安", Items: []string{"Nina"}}}
	c, store := newTestCoordinator(t, &fakeMenu{cats: stale}, sender, &now)

	if err := c.runOnce(ctx); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("stale roster was announced: %v", sender.sent)
	}
	if _, ok, _ := store.LastSent(ctx); ok {
		t.Fatal("record updated on a skipped cycle")
	}
}

func TestRunOnceNoData(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 15, 11, 45, 0, 0, time.UTC)
	sender := &fakeSender{}

	tests := []struct {
		name string
		menu *fakeMenu
	}{
		{name: "empty categories", menu: &fakeMenu{}},
		{name: "no date token", menu: &fakeMenu{cats: []roster.Category{{Name: "晚安", Items: []string{"Nina"}}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCoordinator(t, tt.menu, sender, &now)
			if err := c.runOnce(context.Background()); err != nil {
				t.Fatalf("runOnce: %v", err)
			}
			if len(sender.sent) != 0 {
				t.Fatalf("announced without data: %v", sender.sent)
			}
		})
	}
}

func TestRunOnceFetchError(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 15, 11, 45, 0, 0, time.UTC)
	sender := &fakeSender{}
	c, store := newTestCoordinator(t, &fakeMenu{err: errors.New("connection refused")}, sender, &now)

	if err := c.runOnce(context.Background()); err == nil {
		t.Fatal("expected fetch error to surface")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("announced despite fetch failure: %v", sender.sent)
	}
	if _, ok, _ := store.LastSent(context.Background()); ok {
		t.Fatal("record updated despite fetch failure")
	}
}

func TestDeliveryFailureRetriesNextTick(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 11, 45, 0, 0, time.UTC)
	sender := &fakeSender{err: errors.New("telegram: 502")}
	c, store := newTestCoordinator(t, &fakeMenu{cats: saturdayRoster}, sender, &now)

	c.tick(ctx)
	if _, ok, _ := store.LastSent(ctx); ok {
		t.Fatal("record updated despite failed delivery")
	}

	// Sink recovers; the next in-window tick retries naturally.
	sender.err = nil
	now = now.Add(2 * time.Minute)
	c.tick(ctx)
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages after recovery, want 1", len(sender.sent))
	}
	if date, ok, _ := store.LastSent(ctx); !ok || date != 20240615 {
		t.Fatalf("record = (%d, %v), want (20240615, true)", date, ok)
	}
}
