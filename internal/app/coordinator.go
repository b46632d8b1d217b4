package app

import (
	"context"
	"strconv"
	"time"

	"fairybot/internal/gate"
	"fairybot/internal/roster"
	kit "fairybot/internal/transport"
	logx "fairybot/pkg/logx"
)

type menuSource interface {
	FetchRoster(ctx context.Context) ([]roster.Category, error)
}

// coordinator runs one evaluation cycle:
// gate check -> fetch -> parse -> staleness guard -> format -> deliver ->
// persist. Every failure short of delivery is recovered locally; the next
// tick inside the window retries naturally.
type coordinator struct {
	log    logx.Logger
	menu   menuSource
	sender kit.Sender
	gate   *gate.Gate
	target kit.ChatTarget
	loc    *time.Location

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

func (c *coordinator) clock() time.Time {
	t := time.Now()
	if c.now != nil {
		t = c.now()
	}
	if c.loc != nil {
		t = t.In(c.loc)
	}
	return t
}

// tick is the continuous-mode entry: consult the gate, then run one cycle.
func (c *coordinator) tick(ctx context.Context) {
	if !c.gate.ShouldSend(ctx, c.clock()) {
		return
	}
	if err := c.runOnce(ctx); err != nil {
		c.log.Warn("announce cycle failed", logx.Err(err))
	}
}

// runOnce executes one cycle unconditionally (the gate has already agreed,
// or force mode bypassed it). Informational skips (no data, stale roster)
// return nil; only real failures surface as errors.
func (c *coordinator) runOnce(ctx context.Context) error {
	now := c.clock()

	cats, err := c.menu.FetchRoster(ctx)
	if err != nil {
		c.log.Warn("menu fetch failed", logx.Err(err))
		return err
	}

	fairies, date := roster.Parse(cats)
	if len(fairies) == 0 || date == "" {
		c.log.Info("no roster data available")
		return nil
	}

	rosterDate, err := strconv.Atoi(date)
	if err != nil {
		c.log.Warn("roster date token not numeric", logx.String("date", date))
		return nil
	}
	today := gate.DateInt(now)
	if rosterDate < today {
		// Upstream publishes the new roster some time before opening; until
		// then we'd be announcing yesterday's staff.
		c.log.Info("roster not updated yet", logx.Int("roster_date", rosterDate), logx.Int("today", today))
		return nil
	}

	msg := roster.Format(fairies, date, gate.IsWeekend(now))
	if err := c.sender.SendText(ctx, c.target, msg, &kit.SendOptions{DisablePreview: true}); err != nil {
		c.log.Warn("announcement delivery failed", logx.Err(err))
		return err
	}

	if err := c.gate.MarkSent(ctx, rosterDate); err != nil {
		// Delivered but not recorded: the next in-window tick would resend.
		// Surface loudly; this is the one state we cannot repair ourselves.
		c.log.Error("send record update failed", logx.Int("date", rosterDate), logx.Err(err))
		return err
	}

	c.log.Info("roster announced", logx.String("date", date), logx.Int("fairies", len(fairies)))
	return nil
}
