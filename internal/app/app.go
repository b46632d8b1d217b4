// Package app wires fairybot together and drives the announce loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"fairybot/internal/config"
	"fairybot/internal/gate"
	"fairybot/internal/ichef"
	"fairybot/internal/runtime/supervisor"
	"fairybot/internal/storage"
	kit "fairybot/internal/transport"
	"fairybot/internal/transport/telegram/adapter"
	logx "fairybot/pkg/logx"
)

// tickTimeout bounds one evaluation cycle (fetch + delivery). The loop
// ticks every minute; a cycle must never outlive its slot.
const tickTimeout = 50 * time.Second

type App struct {
	cfgm *config.Manager
	cfg  *config.Config

	logs *logx.Service
	log  logx.Logger

	store storage.Store
	coord *coordinator
	loc   *time.Location

	cron *cron.Cron
	sup  *supervisor.Supervisor
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	// logx falls back to console when no sink is enabled.
	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(logSvc.Logger().With(logx.String("comp", "config")))

	loc := time.Local
	if tz := strings.TrimSpace(cfg.Schedule.Timezone); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			_ = logSvc.Close()
			return nil, fmt.Errorf("schedule.timezone: %w", err)
		}
	}

	ad, err := adapter.New(adapter.Config{
		Token:      cfg.Telegram.Token,
		RatePerSec: cfg.Telegram.RatePerSec,
	}, logSvc.Logger().With(logx.String("comp", "telegram")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("telegram: %w", err)
	}

	store, err := storage.Open(storage.Config{
		Driver: cfg.Record.Driver,
		Path:   cfg.Record.Path,
	}, logSvc.Logger().With(logx.String("comp", "record")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("record store: %w", err)
	}

	menuTimeout, err := config.ParseDurationField("menu.timeout", cfg.Menu.Timeout)
	if err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, err
	}
	menu := ichef.New(ichef.Config{
		BaseURL:  cfg.Menu.BaseURL,
		PublicID: cfg.Menu.PublicID,
		Timeout:  menuTimeout,
	}, logSvc.Logger().With(logx.String("comp", "menu")))

	g := gate.New(store, logSvc.Logger().With(logx.String("comp", "gate")))

	coord := &coordinator{
		log:    logSvc.Logger().With(logx.String("comp", "announce")),
		menu:   menu,
		sender: ad,
		gate:   g,
		target: kit.ChatTarget{Chat: cfg.Telegram.ChannelID},
		loc:    loc,
	}

	return &App{
		cfgm:  cfgm,
		cfg:   cfg,
		logs:  logSvc,
		log:   log,
		store: store,
		coord: coord,
		loc:   loc,
	}, nil
}

// Start launches continuous mode: a minute tick in the configured timezone
// plus the config watcher. It returns once the loop is running.
func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log))

	c := cron.New(cron.WithLocation(a.loc))
	_, err := c.AddFunc("* * * * *", func() { a.safeTick() })
	if err != nil {
		return err
	}
	c.Start()
	a.cron = c

	a.sup.Go("config.watch", a.cfgm.Watch)
	a.sup.Go0("config.apply", a.applyUpdates)

	notifyReady(a.log)
	a.log.Info("announce loop started", logx.String("tz", a.loc.String()))
	return nil
}

// safeTick runs one gate-checked cycle with panic recovery so a single bad
// cycle never takes the loop down.
func (a *App) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("announce cycle panicked", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()

	parent := context.Background()
	if a.sup != nil {
		parent = a.sup.Context()
	}
	ctx, cancel := context.WithTimeout(parent, tickTimeout)
	defer cancel()
	a.coord.tick(ctx)
}

// RunOnce executes exactly one cycle, bypassing the send gate. Used by the
// "force" command for manual invocation.
func (a *App) RunOnce(ctx context.Context) error {
	return a.coord.runOnce(ctx)
}

// applyUpdates consumes config reloads. Only logging settings are applied
// hot; everything else is pinned until restart.
func (a *App) applyUpdates(ctx context.Context) {
	ch := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok || cfg == nil {
				return
			}
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			if cfg.Telegram != a.cfg.Telegram || cfg.Record != a.cfg.Record || cfg.Schedule != a.cfg.Schedule {
				a.log.Warn("credential/schedule changes require a restart to take effect")
			}
			a.cfg = cfg
		}
	}
}

// Stop shuts the loop down without corrupting the record: running cycles
// finish (record writes are single whole-file operations), then workers are
// cancelled and waited for.
func (a *App) Stop(ctx context.Context) error {
	notifyStopping(a.log)

	if a.cron != nil {
		// Stop returns a context that completes when in-flight jobs finish.
		stopCtx := a.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}

	if a.sup != nil {
		a.sup.Cancel()
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := a.sup.Wait(wctx)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			a.log.Debug("shutdown wait", logx.Err(err))
		}
	}

	if a.store != nil {
		_ = a.store.Close()
	}

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}
