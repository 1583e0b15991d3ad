// Package remap folds individual pitches into the playable window once a
// global offset has been chosen. Resolution is a pure function of
// (pitch, offset, config), which is what makes the memo cache valid.
package remap

import (
	"sync"

	"github.com/nexply/Auto-play/keymap"
)

// Remapper resolves raw pitches for one playback session. The offset is
// fixed at construction; a new analysis run builds a new Remapper, which
// is also what invalidates the cache.
type Remapper struct {
	cfg    *keymap.Config
	offset int

	mu    sync.Mutex
	cache map[int]int
}

func New(cfg *keymap.Config, offset int) *Remapper {
	return &Remapper{
		cfg:    cfg,
		offset: offset,
		cache:  make(map[int]int),
	}
}

func (r *Remapper) Offset() int { return r.offset }

// Resolve maps a raw pitch to a playable pitch. It always returns a value
// inside [PlayableMin, PlayableMax].
func (r *Remapper) Resolve(raw int) int {
	r.mu.Lock()
	if v, ok := r.cache[raw]; ok {
		r.mu.Unlock()
		return v
	}
	r.mu.Unlock()

	v := r.resolve(raw)

	r.mu.Lock()
	r.cache[raw] = v
	r.mu.Unlock()
	return v
}

func (r *Remapper) resolve(raw int) int {
	cfg := r.cfg
	shifted := raw + r.offset

	if cfg.InRange(shifted) {
		if cfg.IsPentatonic(mod12(shifted)) {
			// already in range and in scale, keep the exact pitch
			return shifted
		}
		if c, ok := r.nearestInOctave(shifted); ok {
			return c
		}
		return shifted
	}

	// fold by octaves until inside the window
	folded := shifted
	for i := 0; folded < cfg.PlayableMin && i < 11; i++ {
		folded += 12
	}
	for i := 0; folded > cfg.PlayableMax && i < 11; i++ {
		folded -= 12
	}

	if cfg.InRange(folded) {
		if cfg.IsPentatonic(mod12(folded)) {
			return folded
		}
		if c, ok := r.nearestInOctave(folded); ok {
			return c
		}
	}

	// degenerate window (narrower than an octave): clamp and be done
	if folded < cfg.PlayableMin {
		return cfg.PlayableMin
	}
	if folded > cfg.PlayableMax {
		return cfg.PlayableMax
	}
	return folded
}

// nearestInOctave searches the octave containing pitch for the in-scale
// candidate closest to it, restricted to the playable window. Ties go to
// the lower candidate.
func (r *Remapper) nearestInOctave(pitch int) (int, bool) {
	cfg := r.cfg
	base := floorDiv(pitch, 12) * 12

	best, bestDist, found := 0, 0, false
	for _, interval := range cfg.PentatonicIntervals {
		candidate := base + interval
		if !cfg.InRange(candidate) {
			continue
		}
		dist := candidate - pitch
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist {
			best, bestDist, found = candidate, dist, true
		}
	}
	return best, found
}

func mod12(v int) int {
	m := v % 12
	if m < 0 {
		m += 12
	}
	return m
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
