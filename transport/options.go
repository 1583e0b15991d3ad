package transport

import (
	"time"

	"github.com/nexply/Auto-play/model"
)

// PlayOption tweaks a single playback session.
type PlayOption func(*playOptions)

type playOptions struct {
	track           int
	preview         bool
	previewOriginal bool
	speed           float64
	weights         *model.Weights
	octaveWeights   *model.OctaveWeights
}

func defaultPlayOptions() playOptions {
	return playOptions{track: AllTracks, speed: 1.0}
}

// AllTracks plays every track merged in global time order.
const AllTracks = -1

// WithTrack restricts playback to one track index.
func WithTrack(track int) PlayOption {
	return func(o *playOptions) { o.track = track }
}

// WithPreview routes notes to the sound collaborator instead of the key
// sender. original selects the original-pitch voice pool.
func WithPreview(original bool) PlayOption {
	return func(o *playOptions) {
		o.preview = true
		o.previewOriginal = original
	}
}

// WithSpeed sets the playback-speed multiplier.
func WithSpeed(speed float64) PlayOption {
	return func(o *playOptions) {
		if speed > 0 {
			o.speed = speed
		}
	}
}

// WithWeights overrides the optimizer weights for this session.
func WithWeights(w model.Weights) PlayOption {
	return func(o *playOptions) { o.weights = &w }
}

// WithOctaveWeights overrides the octave-balance weights for this session.
func WithOctaveWeights(w model.OctaveWeights) PlayOption {
	return func(o *playOptions) { o.octaveWeights = &w }
}

// Option configures the Player itself.
type Option func(*Player)

// WithPollInterval sets how often the worker and focus watcher poll.
func WithPollInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithSounder wires the preview-audio collaborator.
func WithSounder(s Sounder) Option {
	return func(p *Player) { p.sound = s }
}

// WithFocusProbe wires the window-focus collaborator.
func WithFocusProbe(f FocusProbe) Option {
	return func(p *Player) { p.probe = f }
}

// WithKeyCooldown drops retriggers of a key that arrive within d of its
// previous press. Games debounce their input; re-pressing faster than
// that only loses notes.
func WithKeyCooldown(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.keyCooldown = d
		}
	}
}
