package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"reviewscraper/pkg/config"
	"reviewscraper/pkg/models"
)

// NotificationSender sends one desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// PlatformSender returns the sender for the current OS, or nil when
// desktop notifications are unsupported
func PlatformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	default:
		return nil
	}
}

// Notifier sends a desktop notification when a crawl finishes. It
// implements Reporter and ignores every other event.
type Notifier struct {
	NopReporter

	sender     NotificationSender
	onComplete bool
	onError    bool
}

// NewNotifier creates a Notifier from the notification settings. A nil
// sender selects the platform sender.
func NewNotifier(cfg config.NotificationConfig, sender NotificationSender) *Notifier {
	if sender == nil {
		sender = PlatformSender()
	}
	return &Notifier{
		sender:     sender,
		onComplete: cfg.OnComplete,
		onError:    cfg.OnError,
	}
}

// RunFinished sends the completion or failure notification
func (n *Notifier) RunFinished(summary models.Summary, err error) {
	if n.sender == nil {
		return
	}

	// notifications are best effort
	switch {
	case err != nil && n.onError:
		_ = n.sender.Send("reviewscraper stopped", fmt.Sprintf("%v after %d companies", err, summary.Processed()))
	case err == nil && n.onComplete:
		_ = n.sender.Send("reviewscraper finished", fmt.Sprintf("%d succeeded, %d failed in %s",
			summary.Succeeded, summary.Failed, summary.Elapsed.Round(time.Second)))
	}
}
