// Package sound is a beep-backed preview synthesizer. It keeps two voice
// pools, one for original pitches and one for adjusted pitches, so a
// side-by-side preview never steals its own voices.
package sound

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

type voiceKey struct {
	pitch    int
	original bool
}

// Synth implements transport.Sounder.
type Synth struct {
	mu     sync.Mutex
	inited bool
	active map[voiceKey]*beep.Ctrl
}

func NewSynth() *Synth {
	return &Synth{active: make(map[voiceKey]*beep.Ctrl)}
}

// Init brings up the speaker with a small buffer for low latency.
func (s *Synth) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return err
	}
	s.inited = true
	return nil
}

func (s *Synth) Play(pitch int, velocity int, original bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inited {
		return
	}

	key := voiceKey{pitch: pitch, original: original}
	if old, ok := s.active[key]; ok {
		silence(old)
	}

	ctrl := &beep.Ctrl{Streamer: newTone(pitch)}
	vol := &effects.Volume{
		Streamer: ctrl,
		Base:     2,
		// velocity 127 plays at full volume, quieter notes drop off in dB
		Volume: 2 * (float64(velocity)/127 - 1),
	}
	s.active[key] = ctrl
	speaker.Play(vol)
}

func (s *Synth) Stop(pitch int, original bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voiceKey{pitch: pitch, original: original}
	if ctrl, ok := s.active[key]; ok {
		silence(ctrl)
		delete(s.active, key)
	}
}

func (s *Synth) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ctrl := range s.active {
		silence(ctrl)
		delete(s.active, key)
	}
}

func silence(ctrl *beep.Ctrl) {
	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}

// tone is a decaying sine voice for one note.
type tone struct {
	freq float64
	pos  int
}

func newTone(pitch int) *tone {
	return &tone{freq: 440 * math.Pow(2, float64(pitch-69)/12)}
}

// maxVoiceSeconds keeps a voice from ringing forever if its note-off is
// lost.
const maxVoiceSeconds = 8

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	limit := int(sampleRate) * maxVoiceSeconds
	for i := range samples {
		if t.pos >= limit {
			return i, i > 0
		}
		sec := float64(t.pos) / float64(sampleRate)
		v := math.Sin(2*math.Pi*t.freq*sec) * math.Exp(-sec*1.5) * 0.3
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
