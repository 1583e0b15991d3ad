// Package keymap holds the playable-range and key-table configuration for
// the in-game instrument. Pitches outside this table have to be folded in
// by the remapper before a key can be sent.
package keymap

import (
	"github.com/nexply/Auto-play/model"
)

// Mode selects which emulated instrument layout is active.
type Mode int

const (
	ModeTwentyOneKey Mode = iota
	ModeThirtySixKey
)

func (m Mode) String() string {
	if m == ModeThirtySixKey {
		return "36-key"
	}
	return "21-key"
}

// Config is immutable for the duration of a playback session.
type Config struct {
	Mode        Mode
	PlayableMin int
	PlayableMax int

	// NoteToKey maps a playable pitch to the key id that produces it.
	// Not every pitch in range needs an entry.
	NoteToKey map[int]string

	// PentatonicIntervals are the semitone-within-octave values considered
	// in scale for the instrument's idiom.
	PentatonicIntervals []int

	// OctaveBases anchor the named octave bands, ascending by pitch.
	OctaveBases []OctaveBase

	// TransitionImportance scores off-scale intervals by their melodic
	// role (passing tones, leading tones...). Anything missing gets
	// DefaultImportance.
	TransitionImportance map[int]float64

	Weights       model.Weights
	OctaveWeights model.OctaveWeights
}

type OctaveBase struct {
	Name string
	Base int
}

// DefaultImportance is the score of an interval that is neither pentatonic
// nor a known transition note.
const DefaultImportance = 0.3

var defaultPentatonic = []int{0, 2, 4, 5, 7, 9, 11}

// Passing/ornamental tones still carry some melodic weight.
var defaultTransitionImportance = map[int]float64{
	1:  0.8,
	3:  0.7,
	6:  0.6,
	8:  0.7,
	10: 0.6,
}

// DefaultWeights matches the tuning the optimizer ships with; presets
// override it per song.
func DefaultWeights() model.Weights {
	return model.Weights{
		Coverage:      0.3,
		Density:       0.2,
		Melody:        0.2,
		Transition:    0.1,
		Pentatonic:    0.1,
		OctaveBalance: 0.1,
	}
}

func DefaultOctaveWeights() model.OctaveWeights {
	return model.OctaveWeights{Low: 0.3, Middle: 0.4, High: 0.3}
}

// twentyOneKeyRows: three octave bands, seven diatonic degrees each.
var twentyOneKeyRows = []struct {
	base int
	keys [7]string
}{
	{48, [7]string{"z", "x", "c", "v", "b", "n", "m"}},
	{60, [7]string{"a", "s", "d", "f", "g", "h", "j"}},
	{72, [7]string{"q", "w", "e", "r", "t", "y", "u"}},
}

// TwentyOneKey is the stock 3x7 layout: pitches 48..83, only diatonic
// degrees are mapped.
func TwentyOneKey() *Config {
	noteToKey := make(map[int]string)
	for _, row := range twentyOneKeyRows {
		for i, interval := range defaultPentatonic {
			noteToKey[row.base+interval] = row.keys[i]
		}
	}
	return &Config{
		Mode:                 ModeTwentyOneKey,
		PlayableMin:          48,
		PlayableMax:          83,
		NoteToKey:            noteToKey,
		PentatonicIntervals:  append([]int(nil), defaultPentatonic...),
		OctaveBases:          []OctaveBase{{"low", 48}, {"middle", 60}, {"high", 72}},
		TransitionImportance: copyImportance(),
		Weights:              DefaultWeights(),
		OctaveWeights:        DefaultOctaveWeights(),
	}
}

// ThirtySixKey covers the same 48..83 range chromatically: diatonic
// degrees on the bare key, accidentals on shift+key of the degree below.
func ThirtySixKey() *Config {
	cfg := TwentyOneKey()
	cfg.Mode = ModeThirtySixKey
	for _, row := range twentyOneKeyRows {
		for semitone := 0; semitone < 12; semitone++ {
			pitch := row.base + semitone
			if _, ok := cfg.NoteToKey[pitch]; ok {
				continue
			}
			// the accidental borrows the key of the degree just below it
			below := cfg.NoteToKey[pitch-1]
			cfg.NoteToKey[pitch] = "shift+" + below
		}
	}
	return cfg
}

// ForMode returns a fresh config for the given mode.
func ForMode(m Mode) *Config {
	if m == ModeThirtySixKey {
		return ThirtySixKey()
	}
	return TwentyOneKey()
}

func copyImportance() map[int]float64 {
	m := make(map[int]float64, len(defaultTransitionImportance))
	for k, v := range defaultTransitionImportance {
		m[k] = v
	}
	return m
}

// InRange reports whether pitch is inside the playable window.
func (c *Config) InRange(pitch int) bool {
	return pitch >= c.PlayableMin && pitch <= c.PlayableMax
}

// IsPentatonic reports whether a semitone-within-octave interval is in
// scale.
func (c *Config) IsPentatonic(interval int) bool {
	for _, p := range c.PentatonicIntervals {
		if p == interval {
			return true
		}
	}
	return false
}

// Importance scores an interval: 1.0 when in scale, the transition-note
// weight otherwise.
func (c *Config) Importance(interval int) float64 {
	if c.IsPentatonic(interval) {
		return 1.0
	}
	if v, ok := c.TransitionImportance[interval]; ok {
		return v
	}
	return DefaultImportance
}

// NearestPentatonicDistance is the semitone distance from interval to the
// closest in-scale interval.
func (c *Config) NearestPentatonicDistance(interval int) int {
	best := 12
	for _, p := range c.PentatonicIntervals {
		d := interval - p
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
		}
	}
	return best
}

// Band returns the index in OctaveBases of the band a pitch falls in:
// below the second base is band 0, below the third is band 1, and so on.
func (c *Config) Band(pitch int) int {
	for i := 1; i < len(c.OctaveBases); i++ {
		if pitch < c.OctaveBases[i].Base {
			return i - 1
		}
	}
	return len(c.OctaveBases) - 1
}
