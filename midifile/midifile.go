// Package midifile wraps the SMF container library: it loads files (with a
// best-effort repair pass for broken ones), flattens note and tempo events
// into global tick order, and reports per-track info for track selection.
package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/nexply/Auto-play/model"
)

// Song is one decoded MIDI file, read-only after Load.
type Song struct {
	Path         string
	TicksPerBeat uint16
	Events       []model.NoteEvent
	Tracks       []model.TrackInfo
	Tempo        *TempoMap
}

// Read parses an SMF container from disk.
func Read(path string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// the reader can panic on malformed containers
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return &blank, fmt.Errorf("reading midi file: %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, fmt.Errorf("parsing midi file: %w", err)
	}
	return res, nil
}

// Load reads and flattens a file. Individual messages that cannot be
// used are dropped and note/velocity fields are clamped; only a container
// that cannot be parsed at all is a load failure.
func Load(path string) (*Song, error) {
	parsed, err := Read(path)
	if err != nil {
		return nil, err
	}
	return FromSMF(path, parsed), nil
}

// FromSMF flattens an already-parsed container.
func FromSMF(path string, parsed *smf.SMF) *Song {
	song := &Song{Path: path, TicksPerBeat: 480}
	if metric, ok := parsed.TimeFormat.(smf.MetricTicks); ok {
		song.TicksPerBeat = uint16(metric)
	}

	var tempos []model.TempoEvent
	var dropped int

	for trackNum, events := range parsed.Tracks {
		var absTicks int64
		var info model.TrackInfo
		info.Index = trackNum
		info.MinPitch = 127

		for _, event := range events {
			absTicks += int64(event.Delta)

			var channel, key, velocity uint8
			var bpm float64
			var name string
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				on := velocity > 0 // running-status note-off
				song.Events = append(song.Events, model.NoteEvent{
					Pitch:    key & 0x7f,
					Velocity: velocity & 0x7f,
					On:       on,
					Tick:     absTicks,
					Track:    trackNum,
					Channel:  channel,
				})
				if on {
					info.NoteCount++
					if key < info.MinPitch {
						info.MinPitch = key
					}
					if key > info.MaxPitch {
						info.MaxPitch = key
					}
				}
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				song.Events = append(song.Events, model.NoteEvent{
					Pitch:   key & 0x7f,
					Tick:    absTicks,
					Track:   trackNum,
					Channel: channel,
				})
			case event.Message.GetMetaTempo(&bpm):
				if bpm <= 0 {
					dropped++
					continue
				}
				tempos = append(tempos, model.TempoEvent{
					Tick:          absTicks,
					MicrosPerBeat: int(60000000 / bpm),
				})
			case event.Message.GetMetaTrackName(&name):
				info.Name = name
			}
		}

		if info.NoteCount > 0 {
			if info.Name == "" {
				info.Name = fmt.Sprintf("Track %d", trackNum+1)
			}
			song.Tracks = append(song.Tracks, info)
		}
	}

	if dropped > 0 {
		logrus.WithField("dropped", dropped).Warn("dropped unusable midi messages")
	}

	// strict global time order; offs before ons on equal ticks so a
	// retrigger of the same pitch never overlaps
	sort.SliceStable(song.Events, func(i, j int) bool {
		a, b := song.Events[i], song.Events[j]
		if a.Tick != b.Tick {
			return a.Tick < b.Tick
		}
		return !a.On && b.On
	})

	song.Tempo = NewTempoMap(tempos, song.TicksPerBeat)
	return song
}

// NoteOns collects the (pitch, velocity) observations the optimizer wants,
// optionally restricted to one track index (-1 means all tracks).
func (s *Song) NoteOns(track int) (notes []int, velocities []int) {
	for _, ev := range s.Events {
		if !ev.On {
			continue
		}
		if track >= 0 && ev.Track != track {
			continue
		}
		notes = append(notes, int(ev.Pitch))
		velocities = append(velocities, int(ev.Velocity))
	}
	return notes, velocities
}

// TotalSeconds is the wall-clock time of the last event.
func (s *Song) TotalSeconds() float64 {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Tempo.TimeAt(s.Events[len(s.Events)-1].Tick)
}
