package scene

import (
	"time"

	"github.com/solarfolio/solarfolio/internal/moon"
)

// EventKind controls how an event is shown in the HUD log.
type EventKind uint8

const (
	EventInfo     EventKind = iota // cyan
	EventFocus                     // white
	EventFidelity                  // yellow
	EventAsset                     // red, failed loads
)

// Event is a single entry in the scene log.
type Event struct {
	At   time.Time
	Text string
	Kind EventKind
}

// hudWidth is the HUD log column width in pixels.
const hudWidth = 260

// EventLog is a bounded FIFO of scene events.
type EventLog struct {
	Events  []Event
	maxSize int
}

// NewEventLog creates a log that keeps the most recent maxSize lines.
func NewEventLog(maxSize int) *EventLog {
	return &EventLog{
		Events:  make([]Event, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an event, evicting the oldest if full. Long text is wrapped
// to the HUD width, one entry per line.
func (l *EventLog) Add(at time.Time, text string, kind EventKind) {
	for _, line := range moon.WrapText(text, hudWidth) {
		ev := Event{At: at, Text: line, Kind: kind}
		if len(l.Events) >= l.maxSize {
			copy(l.Events, l.Events[1:])
			l.Events[len(l.Events)-1] = ev
		} else {
			l.Events = append(l.Events, ev)
		}
	}
}

// Recent returns the last n events (or fewer if the log is shorter).
func (l *EventLog) Recent(n int) []Event {
	if n > len(l.Events) {
		n = len(l.Events)
	}
	return l.Events[len(l.Events)-n:]
}
