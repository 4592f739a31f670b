// Package notify defines the user-facing notification and haptic sinks the
// search and map cores emit into. The core only ever hands these message
// keys; rendering and localization happen at the edge.
package notify

import (
	"localist_backend/internal/i18n"
	"localist_backend/platform/logger"
)

// Notifier receives user-visible outcome messages keyed by i18n message key.
type Notifier interface {
	Success(sessionID, messageKey string)
	Error(sessionID, messageKey string)
}

// Intensity selects a haptic pulse pattern.
type Intensity string

const (
	Light   Intensity = "light"
	Medium  Intensity = "medium"
	Heavy   Intensity = "heavy"
	Success Intensity = "success"
	Error   Intensity = "error"
)

// Haptics is a fire-and-forget pulse sink. Implementations silently no-op
// when the device does not support vibration or the user disabled motion
// feedback.
type Haptics interface {
	Pulse(sessionID string, intensity Intensity)
}

// LogNotifier resolves message keys and writes them to the structured log.
// Used when no client is draining the outbox (worker, tests, dev).
type LogNotifier struct {
	log     *logger.Logger
	locales *i18n.Provider
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger, locales *i18n.Provider) *LogNotifier {
	return &LogNotifier{log: log, locales: locales}
}

// Success logs a success notification.
func (n *LogNotifier) Success(sessionID, messageKey string) {
	n.log.Info("notify_success", "session_id", sessionID, "message", n.locales.T(messageKey))
}

// Error logs an error notification.
func (n *LogNotifier) Error(sessionID, messageKey string) {
	n.log.Warn("notify_error", "session_id", sessionID, "message", n.locales.T(messageKey))
}

var _ Notifier = (*LogNotifier)(nil)

// NoopHaptics discards every pulse.
type NoopHaptics struct{}

// Pulse does nothing.
func (NoopHaptics) Pulse(string, Intensity) {}

var _ Haptics = (NoopHaptics{})
