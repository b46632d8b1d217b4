package app

import (
	"github.com/coreos/go-systemd/v22/daemon"

	logx "fairybot/pkg/logx"
)

// Readiness notifications for Type=notify units. Both calls are no-ops
// outside systemd (no NOTIFY_SOCKET).

func notifyReady(log logx.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Debug("sd_notify ready failed", logx.Err(err))
		return
	}
	if sent {
		log.Debug("systemd notified: ready")
	}
}

func notifyStopping(log logx.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		log.Debug("sd_notify stopping failed", logx.Err(err))
		return
	}
	if sent {
		log.Debug("systemd notified: stopping")
	}
}
