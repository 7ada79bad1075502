// Package systemd reports probe state to the service manager. Every call is a
// no-op when the process is not started by systemd.
package systemd

import (
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify messages.
type Notifier struct {
	watchdog time.Duration
}

// NewNotifier creates a Notifier and detects whether the watchdog is enabled
// for this process.
func NewNotifier() *Notifier {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		slog.Warn("Ignoring invalid watchdog settings", "error", err)
		interval = 0
	}
	return &Notifier{watchdog: interval}
}

// WatchdogTimeout returns the watchdog timeout, or 0 when disabled.
func (n *Notifier) WatchdogTimeout() time.Duration {
	return n.watchdog
}

// Ready tells the service manager that startup finished.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(status string) {
	n.send("STATUS=" + status)
}

// Watchdog resets the watchdog timer if the watchdog is enabled.
func (n *Notifier) Watchdog() {
	if n.watchdog <= 0 {
		return
	}
	n.send(daemon.SdNotifyWatchdog)
}

// Stopping tells the service manager that shutdown has begun.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

func (n *Notifier) send(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		slog.Warn("Failed to notify systemd", "state", state, "error", err)
	}
}
