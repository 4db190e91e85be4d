package bookmarks

// EventKind identifies an import event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventDone
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is one progress notification from an import run.
// Done and Error are terminal: at most one of them is emitted per run.
type Event struct {
	Kind    EventKind
	RunID   string
	Message string // EventProgress
	Total   int    // EventDone
	Err     error  // EventError
}

// Callbacks is the three-callback form of an event stream.
type Callbacks struct {
	OnProgress func(message string)
	OnComplete func(total int)
	OnError    func(err error)
}

// Dispatch drains events into cb until the channel is closed. Nil callbacks
// are skipped.
func Dispatch(events <-chan Event, cb Callbacks) {
	for ev := range events {
		switch ev.Kind {
		case EventProgress:
			if cb.OnProgress != nil {
				cb.OnProgress(ev.Message)
			}
		case EventDone:
			if cb.OnComplete != nil {
				cb.OnComplete(ev.Total)
			}
		case EventError:
			if cb.OnError != nil {
				cb.OnError(ev.Err)
			}
		}
	}
}
