package model

// NoteEvent is one decoded note-on or note-off. Immutable once produced
// by the decoder.
type NoteEvent struct {
	Pitch    uint8
	Velocity uint8
	On       bool
	Tick     int64
	Track    int
	Channel  uint8
}

// TempoEvent marks a tempo change at an absolute tick.
type TempoEvent struct {
	Tick          int64
	MicrosPerBeat int
}

type TrackInfo struct {
	Index     int
	Name      string
	NoteCount int
	MinPitch  uint8
	MaxPitch  uint8
}
