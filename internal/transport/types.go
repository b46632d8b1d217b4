package transport

import "context"

// ChatTarget identifies a delivery destination: a numeric chat id
// ("-1001234567890") or a channel username ("@lefiya_fairies").
type ChatTarget struct {
	Chat string
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers a text message best-effort. Any non-success outcome is an
// error; callers treat it as "not sent" (no retry, no partial credit).
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) error
}
