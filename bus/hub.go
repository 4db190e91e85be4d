package bus

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
)

// Hub tracks connected tabs and delivers messages to whichever tab is
// active at send time. Delivery is best effort: there is no queue, replay
// or acknowledgement.
type Hub struct {
	mu     sync.Mutex
	tabs   map[string]chan Message
	active string

	dropped atomic.Int64
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{tabs: make(map[string]chan Message)}
}

// Register adds a tab with the given outbound buffer and makes it active.
func (h *Hub) Register(buffer int) (string, <-chan Message) {
	if buffer < 1 {
		buffer = 16
	}
	id := uuid.NewString()
	ch := make(chan Message, buffer)

	h.mu.Lock()
	h.tabs[id] = ch
	h.active = id
	h.mu.Unlock()

	slog.Debug("tab registered", slog.String("tab", id))
	return id, ch
}

// Unregister removes a tab and closes its channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.tabs[id]
	if !ok {
		return
	}
	delete(h.tabs, id)
	close(ch)
	if h.active == id {
		h.active = ""
	}
}

// Focus marks a registered tab as active.
func (h *Hub) Focus(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.tabs[id]; !ok {
		return false
	}
	h.active = id
	return true
}

// Active returns the active tab id, or "" when none is.
func (h *Hub) Active() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Tabs returns the number of connected tabs.
func (h *Hub) Tabs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tabs)
}

// Dropped returns how many messages found no active tab or a full buffer.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Send delivers msg to the active tab without blocking. It reports whether
// the message was handed off.
func (h *Hub) Send(msg Message) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.tabs[h.active]
	if !ok {
		h.dropped.Add(1)
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

// SendTo delivers msg to one tab without blocking. Replies to a tab's own
// request use it instead of Send.
func (h *Hub) SendTo(id string, msg Message) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.tabs[id]
	if !ok {
		h.dropped.Add(1)
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

// Sender delivers one message.
type Sender interface {
	Send(Message) bool
}

// Forward relays importer events to s until events is closed. Error values
// cross the boundary as strings.
func Forward(events <-chan bookmarks.Event, s Sender) {
	for ev := range events {
		s.Send(EventMessage(ev))
	}
}

// EventMessage converts one importer event.
func EventMessage(ev bookmarks.Event) Message {
	switch ev.Kind {
	case bookmarks.EventDone:
		return Message{Type: ActionImportDone, TotalImported: ev.Total}
	case bookmarks.EventError:
		msg := "unknown error"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		return Message{Type: ActionImportError, Error: msg}
	default:
		return Message{Type: ActionImportUpdate, ImportedMessage: ev.Message}
	}
}
