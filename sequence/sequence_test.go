package sequence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/midifile"
	"github.com/nexply/Auto-play/model"
	"github.com/nexply/Auto-play/remap"
)

func song(events ...model.NoteEvent) *midifile.Song {
	return &midifile.Song{
		TicksPerBeat: 480,
		Events:       events,
		Tempo:        midifile.NewTempoMap(nil, 480),
	}
}

func on(pitch uint8, tick int64) model.NoteEvent {
	return model.NoteEvent{Pitch: pitch, Velocity: 100, On: true, Tick: tick}
}

func off(pitch uint8, tick int64) model.NoteEvent {
	return model.NoteEvent{Pitch: pitch, Tick: tick}
}

func TestSimplePressRelease(t *testing.T) {
	cfg := keymap.TwentyOneKey()
	log := FromSong(song(on(60, 0), off(60, 480)), cfg, remap.New(cfg, 0), AllTracks)

	assert := assert.New(t)
	assert.Len(log.Events, 2)
	assert.Equal(model.KeyEvent{Key: "a", Press: true, Time: 0, Note: 60, Velocity: 100}, log.Events[0])
	assert.Equal(model.KeyEvent{Key: "a", Press: false, Time: 500, Note: 60}, log.Events[1])
}

func TestSyntheticReleaseAtStreamEnd(t *testing.T) {
	cfg := keymap.TwentyOneKey()
	log := FromSong(song(on(60, 0), on(64, 480), off(64, 960)), cfg, remap.New(cfg, 0), AllTracks)

	assert := assert.New(t)
	assert.Len(log.Events, 4)

	last := log.Events[len(log.Events)-1]
	assert.False(last.Press)
	assert.Equal(60, last.Note)
	// appended after the last real event
	assert.Greater(last.Time, 1000.0)
}

func TestDuplicatePressKeepsFirst(t *testing.T) {
	cfg := keymap.TwentyOneKey()
	log := FromSong(song(on(60, 0), on(60, 240), off(60, 480)), cfg, remap.New(cfg, 0), AllTracks)

	assert := assert.New(t)
	assert.Len(log.Events, 2)
	assert.Equal(0.0, log.Events[0].Time)
}

func TestReleaseWithoutPressSkipped(t *testing.T) {
	cfg := keymap.TwentyOneKey()
	log := FromSong(song(off(60, 0), on(62, 480), off(62, 960)), cfg, remap.New(cfg, 0), AllTracks)

	assert.Len(t, log.Events, 2)
}

func TestReleaseBeforePressOnTies(t *testing.T) {
	cfg := keymap.TwentyOneKey()
	log := FromSong(song(on(60, 0), off(60, 480), on(62, 480), off(62, 960)),
		cfg, remap.New(cfg, 0), AllTracks)

	assert := assert.New(t)
	assert.Len(log.Events, 4)
	assert.Equal(log.Events[1].Time, log.Events[2].Time)
	assert.False(log.Events[1].Press)
	assert.True(log.Events[2].Press)
}

func TestTrackFilter(t *testing.T) {
	cfg := keymap.TwentyOneKey()
	events := []model.NoteEvent{
		{Pitch: 60, Velocity: 100, On: true, Tick: 0, Track: 0},
		{Pitch: 64, Velocity: 100, On: true, Tick: 0, Track: 1},
		{Pitch: 60, Tick: 480, Track: 0},
		{Pitch: 64, Tick: 480, Track: 1},
	}
	log := FromSong(song(events...), cfg, remap.New(cfg, 0), 1)

	assert := assert.New(t)
	assert.Len(log.Events, 2)
	assert.Equal(64, log.Events[0].Note)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	cfg := keymap.TwentyOneKey()
	log := FromSong(song(on(60, 0), off(60, 480)), cfg, remap.New(cfg, 0), AllTracks)

	path := filepath.Join(t.TempDir(), "seq.json")

	assert := assert.New(t)
	assert.NoError(Save(log, path))

	loaded, err := LoadFile(path)
	assert.NoError(err)
	assert.Equal(log, loaded)
}
