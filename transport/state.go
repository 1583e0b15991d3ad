package transport

// State is the transport state machine. AutoPaused is entered only from
// Playing when the target window loses focus, and only ever returns to
// Playing. Stopped is both initial and terminal for a session.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	AutoPaused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case AutoPaused:
		return "auto-paused"
	default:
		return "stopped"
	}
}

// NotificationType labels transport notifications; the UI layer consumes
// these instead of registering callbacks.
type NotificationType int

const (
	NotifyStarted NotificationType = iota
	NotifyPaused
	NotifyResumed
	NotifyAutoPaused
	NotifyStopped
	NotifyFinished
)

type Notification struct {
	Type    NotificationType
	Session string
	Path    string
}
