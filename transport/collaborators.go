package transport

// KeySender is the key-injection collaborator. Key ids may carry a
// modifier prefix ("shift+a"); the sender owes a physical-key-equivalent
// effect on whatever holds OS input focus.
type KeySender interface {
	Press(key string) error
	Release(key string) error
	ReleaseAll()
}

// Sounder is the preview-audio collaborator. The original flag selects
// the voice pool, so original-pitch and adjusted-pitch previews can sound
// concurrently without stealing each other's voices.
type Sounder interface {
	Play(pitch int, velocity int, original bool)
	Stop(pitch int, original bool)
	StopAll()
}

// FocusProbe is the window-focus collaborator.
type FocusProbe interface {
	IsTargetFocused() bool
	FocusTarget() bool
}

// AlwaysFocused stands in when no target window is being tracked, e.g.
// preview mode on a machine without the game running.
type AlwaysFocused struct{}

func (AlwaysFocused) IsTargetFocused() bool { return true }
func (AlwaysFocused) FocusTarget() bool     { return true }

// NullSender discards key events.
type NullSender struct{}

func (NullSender) Press(string) error   { return nil }
func (NullSender) Release(string) error { return nil }
func (NullSender) ReleaseAll()          {}

// NullSounder discards sound events.
type NullSounder struct{}

func (NullSounder) Play(int, int, bool) {}
func (NullSounder) Stop(int, bool)      {}
func (NullSounder) StopAll()            {}
