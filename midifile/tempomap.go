package midifile

import (
	"sort"

	"github.com/nexply/Auto-play/model"
)

// defaultMicrosPerBeat is 120 BPM, the SMF default when no tempo meta
// message appears before the first note.
const defaultMicrosPerBeat = 500000

// TempoMap converts absolute ticks to wall-clock seconds. Time at tick T
// depends on every tempo change before T, so the conversion walks the
// changes cumulatively.
type TempoMap struct {
	events       []model.TempoEvent
	ticksPerBeat uint16
}

func NewTempoMap(events []model.TempoEvent, ticksPerBeat uint16) *TempoMap {
	if ticksPerBeat == 0 {
		ticksPerBeat = 480
	}
	sorted := append([]model.TempoEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})
	if len(sorted) == 0 || sorted[0].Tick > 0 {
		sorted = append([]model.TempoEvent{{Tick: 0, MicrosPerBeat: defaultMicrosPerBeat}}, sorted...)
	}
	return &TempoMap{events: sorted, ticksPerBeat: ticksPerBeat}
}

// TimeAt returns the wall-clock time of an absolute tick, in seconds.
func (tm *TempoMap) TimeAt(tick int64) float64 {
	var micros float64
	for i, ev := range tm.events {
		endTick := tick
		if i+1 < len(tm.events) && tm.events[i+1].Tick < tick {
			endTick = tm.events[i+1].Tick
		}
		if endTick <= ev.Tick {
			break
		}
		micros += float64(endTick-ev.Tick) * float64(ev.MicrosPerBeat) / float64(tm.ticksPerBeat)
	}
	return micros / 1e6
}

// MicrosPerBeatAt returns the tempo in effect at a tick.
func (tm *TempoMap) MicrosPerBeatAt(tick int64) int {
	current := defaultMicrosPerBeat
	for _, ev := range tm.events {
		if ev.Tick > tick {
			break
		}
		current = ev.MicrosPerBeat
	}
	return current
}
