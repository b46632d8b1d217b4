// Package adapter implements the Telegram delivery sink over telebot.
//
// The bot is send-only: it posts announcements to a channel and never
// consumes updates, so the long-poller is never started.
package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	kit "fairybot/internal/transport"
	logx "fairybot/pkg/logx"
)

type Config struct {
	Token string
	// RatePerSec caps outbound sends. Telegram throttles bots that burst;
	// one announcement per day leaves plenty of headroom either way.
	RatePerSec int
}

type Adapter struct {
	cfg Config
	log logx.Logger

	bot     *tele.Bot
	limiter *rate.Limiter
}

// recipient adapts a raw chat string (numeric id or @username) to telebot.
type recipient string

func (r recipient) Recipient() string { return string(r) }

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	// NewBot verifies the token with a getMe call, so bad credentials
	// surface at startup rather than at the first send window.
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	return &Adapter{
		cfg:     cfg,
		log:     log,
		bot:     b,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}, nil
}

func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) error {
	if strings.TrimSpace(to.Chat) == "" {
		return errors.New("empty chat target")
	}
	if opt == nil {
		opt = &kit.SendOptions{}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	_, err := a.bot.Send(recipient(to.Chat), text, &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
	})
	if err != nil {
		return err
	}
	a.log.Debug("message sent", logx.String("chat", to.Chat), logx.Duration("took", time.Since(start)))
	return nil
}
