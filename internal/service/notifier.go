package service

import (
	"fmt"

	"commodity_go/internal/event"
)

// Notifier publishes user-facing toasts onto the event stream. Rendering is
// the presentation layer's concern.
type Notifier struct {
	bus *event.Dispatcher
	seq *uint64
}

// NewNotifier creates a notifier bound to the shared event stream.
func NewNotifier(bus *event.Dispatcher, seq *uint64) *Notifier {
	return &Notifier{bus: bus, seq: seq}
}

// Successf emits a success notice.
func (n *Notifier) Successf(format string, args ...any) {
	n.publish(event.LevelSuccess, fmt.Sprintf(format, args...))
}

// Errorf emits an error notice.
func (n *Notifier) Errorf(format string, args ...any) {
	n.publish(event.LevelError, fmt.Sprintf(format, args...))
}

func (n *Notifier) publish(level, msg string) {
	n.bus.Publish(event.Notice{
		BaseEvent: event.NewBase(n.seq),
		Level:     level,
		Message:   msg,
	})
}
