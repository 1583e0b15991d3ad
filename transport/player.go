// Package transport drives time-ordered dispatch of remapped note events,
// synchronized to real elapsed time and the target window's focus state.
//
// One worker goroutine runs per active session, at most one session at a
// time. The control side only requests transitions; the worker observes
// the shared state at every event boundary and inside every sleep, so a
// stop or pause takes effect within one polling interval.
package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/midifile"
	"github.com/nexply/Auto-play/model"
	"github.com/nexply/Auto-play/optimizer"
	"github.com/nexply/Auto-play/remap"
	"github.com/nexply/Auto-play/util"
)

var (
	// ErrWindowNotFound: the target window could not be located or
	// focused when starting performance-mode playback.
	ErrWindowNotFound = errors.New("transport: target window not found")

	// ErrUnfocused: manual resume was requested while auto-paused and
	// the target window is still unfocused.
	ErrUnfocused = errors.New("transport: target window not focused")

	// ErrNotPlaying: pause/resume with no active session.
	ErrNotPlaying = errors.New("transport: nothing is playing")
)

// Player owns the transport state machine. All mutable fields are guarded
// by mu; collaborator calls happen outside it.
type Player struct {
	cfg   *keymap.Config
	keys  KeySender
	sound Sounder
	probe FocusProbe

	pollInterval  time.Duration
	keyCooldown   time.Duration
	notifications chan Notification

	mu    sync.Mutex
	state State
	sess  *session
}

// session is the per-play() state, constructed fresh on every play call
// and discarded on stop.
type session struct {
	id       uuid.UUID
	song     *midifile.Song
	remapper *remap.Remapper
	offset   int
	score    float64
	opts     playOptions

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	startTime   time.Time
	pauseStart  time.Time
	pausedTotal time.Duration

	// seekTo is a pending seek request in session-clock time, guarded
	// by the player mutex; the worker consumes it at event boundaries
	seekTo *time.Duration

	// worker-only
	pressed   map[string]bool
	lastPress map[string]time.Time
	sounding  map[soundKey]bool
	skipUntil time.Duration
}

type soundKey struct {
	pitch    int
	original bool
}

func NewPlayer(cfg *keymap.Config, keys KeySender, opts ...Option) *Player {
	p := &Player{
		cfg:           cfg,
		keys:          keys,
		sound:         NullSounder{},
		probe:         AlwaysFocused{},
		pollInterval:  100 * time.Millisecond,
		notifications: make(chan Notification, 16),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Notifications delivers transport lifecycle events. Consumers that fall
// behind lose notifications rather than blocking the worker.
func (p *Player) Notifications() <-chan Notification {
	return p.notifications
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Status is a snapshot for the control API.
type Status struct {
	State   string  `json:"state"`
	Session string  `json:"session,omitempty"`
	Path    string  `json:"path,omitempty"`
	Offset  int     `json:"offset"`
	Score   float64 `json:"score"`
	Current float64 `json:"current_seconds"`
	Total   float64 `json:"total_seconds"`
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Status{State: p.state.String()}
	if p.sess != nil {
		st.Session = p.sess.id.String()
		st.Path = p.sess.song.Path
		st.Offset = p.sess.offset
		st.Score = p.sess.score
		st.Current = p.currentLocked()
		st.Total = p.sess.song.TotalSeconds() / p.sess.opts.speed
	}
	return st
}

// CurrentTime is the elapsed playback time in seconds, paused spans
// excluded.
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLocked()
}

func (p *Player) currentLocked() float64 {
	sess := p.sess
	if sess == nil || p.state == Stopped {
		return 0
	}
	var elapsed time.Duration
	if p.state == Paused || p.state == AutoPaused {
		elapsed = sess.pauseStart.Sub(sess.startTime) - sess.pausedTotal
	} else {
		elapsed = time.Since(sess.startTime) - sess.pausedTotal
	}
	if elapsed < 0 {
		elapsed = 0
	}
	total := sess.song.TotalSeconds() / sess.opts.speed
	if s := elapsed.Seconds(); s < total {
		return s
	}
	return total
}

// Play stops any prior session, loads and analyzes the file, and starts a
// fresh session with a fresh remap cache and offset. In performance mode
// the target window must be focusable up front.
func (p *Player) Play(path string, opts ...PlayOption) error {
	song, err := midifile.Load(path)
	if err != nil {
		return fmt.Errorf("transport: load failed: %w", err)
	}
	return p.PlaySong(song, opts...)
}

// PlaySong starts a session from an already-decoded song.
func (p *Player) PlaySong(song *midifile.Song, opts ...PlayOption) error {
	po := defaultPlayOptions()
	for _, opt := range opts {
		opt(&po)
	}

	// a new session must first fully stop the previous one
	p.Stop()

	cfg := p.sessionConfig(po)
	notes, velocities := song.NoteOns(po.track)
	offset, score := optimizer.FindBestOffset(notes, velocities, cfg)

	if !po.preview && !p.probe.FocusTarget() {
		return ErrWindowNotFound
	}

	sess := &session{
		id:        uuid.New(),
		song:      song,
		remapper:  remap.New(cfg, offset),
		offset:    offset,
		score:     score,
		opts:      po,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		pressed:   make(map[string]bool),
		lastPress: make(map[string]time.Time),
		sounding:  make(map[soundKey]bool),
	}

	logrus.WithFields(logrus.Fields{
		"path":   song.Path,
		"offset": offset,
		"score":  fmt.Sprintf("%.2f", score),
		"notes":  len(notes),
	}).Info("starting playback")

	p.mu.Lock()
	p.sess = sess
	p.state = Playing
	sess.startTime = time.Now()
	p.mu.Unlock()

	p.notify(Notification{Type: NotifyStarted, Session: sess.id.String(), Path: song.Path})

	if !po.preview {
		go p.watchFocus(sess)
	}
	go p.run(sess)
	return nil
}

// TogglePause flips between Playing and Paused. Resuming from AutoPaused
// manually is rejected until the window is focused again; resuming from a
// manual pause refocuses the target first.
func (p *Player) TogglePause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sess := p.sess
	if sess == nil {
		return ErrNotPlaying
	}

	switch p.state {
	case Playing:
		p.state = Paused
		sess.pauseStart = time.Now()
		p.notifyLocked(Notification{Type: NotifyPaused, Session: sess.id.String()})
		return nil
	case Paused:
		if !sess.opts.preview && !p.probe.FocusTarget() {
			return ErrWindowNotFound
		}
		sess.pausedTotal += time.Since(sess.pauseStart)
		p.state = Playing
		p.notifyLocked(Notification{Type: NotifyResumed, Session: sess.id.String()})
		return nil
	case AutoPaused:
		if !p.probe.IsTargetFocused() {
			return ErrUnfocused
		}
		sess.pausedTotal += time.Since(sess.pauseStart)
		p.state = Playing
		p.notifyLocked(Notification{Type: NotifyResumed, Session: sess.id.String()})
		return nil
	default:
		return ErrNotPlaying
	}
}

// Seek jumps to a position in seconds of (speed-adjusted) song time. The
// clock moves immediately; the worker rescans the stream at its next
// event boundary, releasing whatever it holds and skipping everything
// before the new position. Seeking while paused keeps the pause.
func (p *Player) Seek(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sess := p.sess
	if sess == nil {
		return ErrNotPlaying
	}

	total := sess.song.TotalSeconds() / sess.opts.speed
	seconds = util.Clamp(seconds, 0, total)

	d := time.Duration(seconds * float64(time.Second))
	now := time.Now()
	sess.startTime = now.Add(-d)
	sess.pausedTotal = 0
	if p.state == Paused || p.state == AutoPaused {
		sess.pauseStart = now
	}
	sess.seekTo = &d
	return nil
}

// takeSeek hands a pending seek request to the worker.
func (p *Player) takeSeek(sess *session) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sess.seekTo == nil {
		return 0, false
	}
	d := *sess.seekTo
	sess.seekTo = nil
	return d, true
}

// Stop always succeeds: it signals the worker, waits for it to release
// every held key and sounding note, and leaves the transport Stopped.
func (p *Player) Stop() {
	p.mu.Lock()
	sess := p.sess
	p.mu.Unlock()

	if sess == nil {
		return
	}
	sess.stopOnce.Do(func() { close(sess.stop) })
	<-sess.done
}

// run is the playback worker: one goroutine per session.
func (p *Player) run(sess *session) {
	defer p.finish(sess)

	for i := 0; i < len(sess.song.Events); i++ {
		if d, ok := p.takeSeek(sess); ok {
			// drop everything held and rescan from the top; events
			// before the new position are skipped, not replayed
			p.releaseHeld(sess)
			sess.skipUntil = d
			i = -1
			continue
		}

		ev := sess.song.Events[i]
		if sess.opts.track >= 0 && ev.Track != sess.opts.track {
			continue
		}

		target := time.Duration(sess.song.Tempo.TimeAt(ev.Tick) / sess.opts.speed * float64(time.Second))
		if target < sess.skipUntil {
			continue
		}
		switch p.sleepUntil(sess, target) {
		case waitStopped:
			return
		case waitSeeked:
			// back to the boundary so the rescan starts right away
			i--
			continue
		}
		p.dispatch(sess, ev)
	}
}

// releaseHeld lets go of every pressed key and sounding note without
// ending the session.
func (p *Player) releaseHeld(sess *session) {
	p.keys.ReleaseAll()
	p.sound.StopAll()
	sess.pressed = make(map[string]bool)
	sess.sounding = make(map[soundKey]bool)
}

type waitResult int

const (
	waitReady waitResult = iota
	waitStopped
	waitSeeked
)

// sleepUntil waits until the session clock reaches target, waking at
// least once per poll interval to observe stop, pause and seek requests.
func (p *Player) sleepUntil(sess *session, target time.Duration) waitResult {
	for {
		select {
		case <-sess.stop:
			return waitStopped
		default:
		}

		p.mu.Lock()
		seeking := sess.seekTo != nil
		paused := p.state == Paused || p.state == AutoPaused
		elapsed := time.Since(sess.startTime) - sess.pausedTotal
		p.mu.Unlock()

		if seeking {
			return waitSeeked
		}
		if paused {
			select {
			case <-sess.stop:
				return waitStopped
			case <-time.After(p.pollInterval):
			}
			continue
		}

		wait := target - elapsed
		if wait <= 0 {
			return waitReady
		}
		if wait > p.pollInterval {
			wait = p.pollInterval
		}
		select {
		case <-sess.stop:
			return waitStopped
		case <-time.After(wait):
		}
	}
}

func (p *Player) dispatch(sess *session, ev model.NoteEvent) {
	pitch := sess.remapper.Resolve(int(ev.Pitch))

	if sess.opts.preview {
		soundPitch := pitch
		original := sess.opts.previewOriginal
		if original {
			soundPitch = int(ev.Pitch)
		}
		key := soundKey{pitch: soundPitch, original: original}
		if ev.On {
			p.sound.Play(soundPitch, int(ev.Velocity), original)
			sess.sounding[key] = true
		} else if sess.sounding[key] {
			p.sound.Stop(soundPitch, original)
			delete(sess.sounding, key)
		}
		return
	}

	key, ok := p.cfg.NoteToKey[pitch]
	if !ok {
		return
	}
	if ev.On {
		if sess.pressed[key] {
			return
		}
		if p.keyCooldown > 0 && time.Since(sess.lastPress[key]) < p.keyCooldown {
			return
		}
		if err := p.keys.Press(key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("press failed")
			return
		}
		sess.pressed[key] = true
		sess.lastPress[key] = time.Now()
	} else {
		if !sess.pressed[key] {
			return
		}
		if err := p.keys.Release(key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("release failed")
		}
		delete(sess.pressed, key)
	}
}

// finish releases everything the session still holds and settles the
// state machine, whether the stream ran out or a stop was requested.
func (p *Player) finish(sess *session) {
	p.keys.ReleaseAll()
	p.sound.StopAll()

	p.mu.Lock()
	finished := true
	select {
	case <-sess.stop:
		finished = false
	default:
	}
	if p.sess == sess {
		p.sess = nil
		p.state = Stopped
	}
	p.mu.Unlock()

	typ := NotifyStopped
	if finished {
		typ = NotifyFinished
	}
	p.notify(Notification{Type: typ, Session: sess.id.String(), Path: sess.song.Path})
	close(sess.done)
}

// watchFocus polls the focus probe and debounces flapping before feeding
// transitions to the state machine.
func (p *Player) watchFocus(sess *session) {
	deb := debounce.New(p.pollInterval + p.pollInterval/2)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	last := true
	for {
		select {
		case <-sess.stop:
			return
		case <-ticker.C:
			focused := p.probe.IsTargetFocused()
			if focused == last {
				continue
			}
			last = focused
			f := focused
			deb(func() { p.ObserveFocus(sess.id.String(), f) })
		}
	}
}

// ObserveFocus applies one focus reading to the state machine: focus loss
// while Playing auto-pauses, focus return while AutoPaused resumes
// without any manual request. A manual Paused state is left alone.
func (p *Player) ObserveFocus(sessionID string, focused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sess := p.sess
	if sess == nil || sess.id.String() != sessionID {
		return
	}

	switch {
	case !focused && p.state == Playing:
		p.state = AutoPaused
		sess.pauseStart = time.Now()
		logrus.Info("target window lost focus, auto-pausing")
		p.notifyLocked(Notification{Type: NotifyAutoPaused, Session: sessionID})
	case focused && p.state == AutoPaused:
		sess.pausedTotal += time.Since(sess.pauseStart)
		p.state = Playing
		logrus.Info("target window focused again, resuming")
		p.notifyLocked(Notification{Type: NotifyResumed, Session: sessionID})
	}
}

func (p *Player) sessionConfig(po playOptions) *keymap.Config {
	if po.weights == nil && po.octaveWeights == nil {
		return p.cfg
	}
	cfg := *p.cfg
	if po.weights != nil {
		cfg.Weights = *po.weights
	}
	if po.octaveWeights != nil {
		cfg.OctaveWeights = *po.octaveWeights
	}
	return &cfg
}

func (p *Player) notify(n Notification) {
	select {
	case p.notifications <- n:
	default:
	}
}

// notifyLocked is the same non-blocking send, named for call sites that
// already hold mu.
func (p *Player) notifyLocked(n Notification) {
	select {
	case p.notifications <- n:
	default:
	}
}
