package notify

import (
	"sync"
	"time"

	"localist_backend/internal/i18n"
)

// Notification is a pending user-visible message for one session.
type Notification struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Haptic    string    `json:"haptic,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Outbox buffers notifications and haptic pulses per session until the
// client polls them. It implements both Notifier and Haptics.
type Outbox struct {
	mu      sync.Mutex
	pending map[string][]Notification
	locales *i18n.Provider
}

// NewOutbox creates an empty outbox.
func NewOutbox(locales *i18n.Provider) *Outbox {
	return &Outbox{
		pending: make(map[string][]Notification),
		locales: locales,
	}
}

// Success queues a success notification for the session.
func (o *Outbox) Success(sessionID, messageKey string) {
	o.push(sessionID, Notification{
		Level:     "success",
		Message:   o.locales.T(messageKey),
		Timestamp: time.Now(),
	})
}

// Error queues an error notification for the session.
func (o *Outbox) Error(sessionID, messageKey string) {
	o.push(sessionID, Notification{
		Level:     "error",
		Message:   o.locales.T(messageKey),
		Timestamp: time.Now(),
	})
}

// Pulse queues a haptic event for the session.
func (o *Outbox) Pulse(sessionID string, intensity Intensity) {
	o.push(sessionID, Notification{
		Level:     "haptic",
		Haptic:    string(intensity),
		Timestamp: time.Now(),
	})
}

// Drain returns and clears all pending notifications for the session.
func (o *Outbox) Drain(sessionID string) []Notification {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending := o.pending[sessionID]
	delete(o.pending, sessionID)
	if pending == nil {
		pending = []Notification{}
	}
	return pending
}

func (o *Outbox) push(sessionID string, n Notification) {
	if sessionID == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[sessionID] = append(o.pending[sessionID], n)
}

var (
	_ Notifier = (*Outbox)(nil)
	_ Haptics  = (*Outbox)(nil)
)
