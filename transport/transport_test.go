package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/midifile"
	"github.com/nexply/Auto-play/model"
)

type fakeSender struct {
	mu       sync.Mutex
	held     map[string]bool
	presses  int
	releases int
}

func newFakeSender() *fakeSender {
	return &fakeSender{held: make(map[string]bool)}
}

func (f *fakeSender) Press(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held[key] = true
	f.presses++
	return nil
}

func (f *fakeSender) Release(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, key)
	f.releases++
	return nil
}

func (f *fakeSender) ReleaseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = make(map[string]bool)
}

func (f *fakeSender) heldCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.held)
}

func (f *fakeSender) pressCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presses
}

type fakeProbe struct {
	mu      sync.Mutex
	focused bool
}

func (f *fakeProbe) set(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = v
}

func (f *fakeProbe) IsTargetFocused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

func (f *fakeProbe) FocusTarget() bool {
	return f.IsTargetFocused()
}

type fakeSounder struct {
	mu      sync.Mutex
	playing map[int]bool
}

func newFakeSounder() *fakeSounder {
	return &fakeSounder{playing: make(map[int]bool)}
}

func (f *fakeSounder) Play(pitch, velocity int, original bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing[pitch] = true
}

func (f *fakeSounder) Stop(pitch int, original bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.playing, pitch)
}

func (f *fakeSounder) StopAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = make(map[int]bool)
}

func (f *fakeSounder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.playing)
}

func testSong(events ...model.NoteEvent) *midifile.Song {
	return &midifile.Song{
		Path:         "test.mid",
		TicksPerBeat: 480,
		Events:       events,
		Tempo:        midifile.NewTempoMap(nil, 480),
	}
}

// longSong holds one note immediately and keeps the worker alive with a
// far-future release.
func longSong() *midifile.Song {
	return testSong(
		model.NoteEvent{Pitch: 60, Velocity: 100, On: true, Tick: 0},
		model.NoteEvent{Pitch: 60, Tick: 480 * 240},
	)
}

func TestPlayPressesRemappedKeys(t *testing.T) {
	sender := newFakeSender()
	p := NewPlayer(keymap.TwentyOneKey(), sender, WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong()))
	assert.Equal(Playing, p.State())

	assert.Eventually(func() bool { return sender.pressCount() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestStopReleasesEverything(t *testing.T) {
	sender := newFakeSender()
	p := NewPlayer(keymap.TwentyOneKey(), sender, WithPollInterval(10*time.Millisecond))

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong()))
	assert.Eventually(func() bool { return sender.pressCount() == 1 },
		time.Second, 5*time.Millisecond)

	p.Stop()
	assert.Equal(Stopped, p.State())
	assert.Equal(0, sender.heldCount())
}

func TestNewSessionStopsThePrevious(t *testing.T) {
	sender := newFakeSender()
	p := NewPlayer(keymap.TwentyOneKey(), sender, WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong()))
	first := p.Status().Session

	assert.NoError(p.PlaySong(longSong()))
	second := p.Status().Session
	assert.NotEqual(first, second)
}

func TestWindowNotFoundRefusesToStart(t *testing.T) {
	probe := &fakeProbe{}
	p := NewPlayer(keymap.TwentyOneKey(), newFakeSender(),
		WithFocusProbe(probe), WithPollInterval(10*time.Millisecond))

	assert := assert.New(t)
	assert.ErrorIs(p.PlaySong(longSong()), ErrWindowNotFound)
	assert.Equal(Stopped, p.State())
}

func TestFocusLossAutoPausesAndResumes(t *testing.T) {
	probe := &fakeProbe{focused: true}
	p := NewPlayer(keymap.TwentyOneKey(), newFakeSender(),
		WithFocusProbe(probe), WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong()))
	sess := p.Status().Session

	// focus loss while playing
	probe.set(false)
	p.ObserveFocus(sess, false)
	assert.Equal(AutoPaused, p.State())

	// manual resume is rejected until focus is back
	assert.ErrorIs(p.TogglePause(), ErrUnfocused)
	assert.Equal(AutoPaused, p.State())

	// focus return resumes without a manual request
	probe.set(true)
	p.ObserveFocus(sess, true)
	assert.Equal(Playing, p.State())
}

func TestFocusLossWhileManuallyPausedIsIgnored(t *testing.T) {
	probe := &fakeProbe{focused: true}
	p := NewPlayer(keymap.TwentyOneKey(), newFakeSender(),
		WithFocusProbe(probe), WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong()))
	sess := p.Status().Session

	assert.NoError(p.TogglePause())
	assert.Equal(Paused, p.State())

	p.ObserveFocus(sess, false)
	assert.Equal(Paused, p.State())
}

func TestManualPauseResume(t *testing.T) {
	p := NewPlayer(keymap.TwentyOneKey(), newFakeSender(),
		WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong()))

	assert.NoError(p.TogglePause())
	assert.Equal(Paused, p.State())
	assert.NoError(p.TogglePause())
	assert.Equal(Playing, p.State())
}

func TestPauseWithoutSession(t *testing.T) {
	p := NewPlayer(keymap.TwentyOneKey(), NullSender{})
	assert.ErrorIs(t, p.TogglePause(), ErrNotPlaying)
}

func TestPreviewRoutesToSounder(t *testing.T) {
	sender := newFakeSender()
	sounder := newFakeSounder()
	p := NewPlayer(keymap.TwentyOneKey(), sender,
		WithSounder(sounder), WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong(), WithPreview(false)))

	assert.Eventually(func() bool { return sounder.count() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(0, sender.pressCount())
}

func TestSeekForwardSkipsEvents(t *testing.T) {
	sender := newFakeSender()
	p := NewPlayer(keymap.TwentyOneKey(), sender, WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	// first note is 10s in; seeking past it must skip the press entirely
	assert := assert.New(t)
	assert.NoError(p.PlaySong(testSong(
		model.NoteEvent{Pitch: 60, Velocity: 100, On: true, Tick: 480 * 20},
		model.NoteEvent{Pitch: 60, Tick: 480 * 21},
		model.NoteEvent{Pitch: 62, Tick: 480 * 240},
	)))

	assert.NoError(p.Seek(20))

	assert.Eventually(func() bool { return p.CurrentTime() >= 20 },
		time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(0, sender.pressCount())
}

func TestSeekBackwardReplays(t *testing.T) {
	sender := newFakeSender()
	p := NewPlayer(keymap.TwentyOneKey(), sender, WithPollInterval(10*time.Millisecond))
	defer p.Stop()

	assert := assert.New(t)
	assert.NoError(p.PlaySong(longSong()))
	assert.Eventually(func() bool { return sender.pressCount() == 1 },
		time.Second, 5*time.Millisecond)

	assert.NoError(p.Seek(0))

	// the rescan releases the held key and presses it again from the top
	assert.Eventually(func() bool { return sender.pressCount() == 2 },
		time.Second, 5*time.Millisecond)
}

func TestSeekWithoutSession(t *testing.T) {
	p := NewPlayer(keymap.TwentyOneKey(), NullSender{})
	assert.ErrorIs(t, p.Seek(5), ErrNotPlaying)
}

func TestKeyCooldownDropsFastRetriggers(t *testing.T) {
	sender := newFakeSender()
	p := NewPlayer(keymap.TwentyOneKey(), sender,
		WithPollInterval(time.Millisecond),
		WithKeyCooldown(time.Hour))
	defer p.Stop()

	// the same pitch retriggered immediately: the second press falls
	// inside the cooldown window
	assert := assert.New(t)
	assert.NoError(p.PlaySong(testSong(
		model.NoteEvent{Pitch: 60, Velocity: 100, On: true, Tick: 0},
		model.NoteEvent{Pitch: 60, Tick: 1},
		model.NoteEvent{Pitch: 60, Velocity: 100, On: true, Tick: 2},
		model.NoteEvent{Pitch: 60, Tick: 3},
		model.NoteEvent{Pitch: 60, Tick: 480 * 240},
	)))

	assert.Eventually(func() bool { return sender.pressCount() == 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(1, sender.pressCount())
}

func TestShortSongFinishes(t *testing.T) {
	p := NewPlayer(keymap.TwentyOneKey(), newFakeSender(),
		WithPollInterval(10*time.Millisecond))

	assert := assert.New(t)
	assert.NoError(p.PlaySong(testSong(
		model.NoteEvent{Pitch: 60, Velocity: 100, On: true, Tick: 0},
		model.NoteEvent{Pitch: 60, Tick: 48},
	)))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-p.Notifications():
			if n.Type == NotifyFinished {
				assert.Equal(Stopped, p.State())
				return
			}
		case <-deadline:
			t.Fatal("playback never finished")
		}
	}
}
