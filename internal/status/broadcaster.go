package status

import (
	"sync"

	"github.com/kozaktomas/photo-stamper/internal/constants"
)

// Broadcaster fans events out to listener channels and keeps a bounded
// history so late subscribers can replay what they missed.
type Broadcaster struct {
	listeners []chan Event
	history   []Event
	closed    bool
	mu        sync.RWMutex
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Report implements Reporter.
func (b *Broadcaster) Report(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.history = append(b.history, e)
	if len(b.history) > constants.EventHistoryLimit {
		b.history = b.history[len(b.history)-constants.EventHistoryLimit:]
	}
	for _, listener := range b.listeners {
		select {
		case listener <- e:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Subscribe returns the events sent so far and a channel for new ones.
// The channel is closed by Unsubscribe or Close.
func (b *Broadcaster) Subscribe() ([]Event, chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, constants.EventChannelBuffer)
	if b.closed {
		close(ch)
	} else {
		b.listeners = append(b.listeners, ch)
	}
	return append([]Event(nil), b.history...), ch
}

// Unsubscribe removes and closes a listener.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes every listener; later events are dropped.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, listener := range b.listeners {
		close(listener)
	}
	b.listeners = nil
}

// History returns a copy of the retained events.
func (b *Broadcaster) History() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Event(nil), b.history...)
}
