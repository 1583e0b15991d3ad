// Package sequence turns a decoded note stream into a flat, timestamped
// press/release log, decoupled from live playback. The log is exportable
// as JSON and replayable; it is lossy on purpose (original pitches are not
// recoverable from key ids alone).
package sequence

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/midifile"
	"github.com/nexply/Auto-play/model"
	"github.com/nexply/Auto-play/remap"
	"github.com/nexply/Auto-play/util"
)

// AllTracks selects every track in FromSong.
const AllTracks = -1

// FromSong remaps every note on/off, resolves it to a key id, and emits a
// clean log: unmapped pitches dropped, duplicate state-unchanged events
// collapsed, and a synthetic release appended for anything still sounding
// at stream end. Events come out sorted by time, releases before presses
// on ties.
func FromSong(song *midifile.Song, cfg *keymap.Config, rm *remap.Remapper, track int) model.EventLog {
	var log model.EventLog
	held := make(map[int]bool) // resolved pitch -> held
	lastMs := 0.0

	for _, ev := range song.Events {
		if track >= 0 && ev.Track != track {
			continue
		}

		pitch := rm.Resolve(int(ev.Pitch))
		key, ok := cfg.NoteToKey[pitch]
		if !ok {
			continue
		}

		ms := song.Tempo.TimeAt(ev.Tick) * 1000
		if ms > lastMs {
			lastMs = ms
		}

		if ev.On {
			if held[pitch] {
				// two presses without a release is a data anomaly,
				// keep the first
				logrus.WithFields(logrus.Fields{"key": key, "note": pitch}).
					Warn("duplicate press, keeping first")
				continue
			}
			held[pitch] = true
			log.Events = append(log.Events, model.KeyEvent{
				Key: key, Press: true, Time: ms,
				Note: pitch, Velocity: int(ev.Velocity),
			})
		} else {
			if !held[pitch] {
				logrus.WithFields(logrus.Fields{"key": key, "note": pitch}).
					Warn("release without matching press, skipping")
				continue
			}
			delete(held, pitch)
			log.Events = append(log.Events, model.KeyEvent{
				Key: key, Press: false, Time: ms, Note: pitch,
			})
		}
	}

	// anything still held gets a synthetic release after the last real event
	stillHeld := util.GetKeys(held)
	sort.Ints(stillHeld)
	for _, pitch := range stillHeld {
		log.Events = append(log.Events, model.KeyEvent{
			Key: cfg.NoteToKey[pitch], Press: false,
			Time: lastMs + 1, Note: pitch,
		})
	}

	sort.SliceStable(log.Events, func(i, j int) bool {
		a, b := log.Events[i], log.Events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return !a.Press && b.Press
	})
	return log
}

// Save writes the log in the exported JSON format.
func Save(log model.EventLog, path string) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFile reads a previously exported log.
func LoadFile(path string) (model.EventLog, error) {
	var log model.EventLog
	data, err := os.ReadFile(path)
	if err != nil {
		return log, err
	}
	err = json.Unmarshal(data, &log)
	return log, err
}
