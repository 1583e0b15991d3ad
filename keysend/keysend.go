// Package keysend carries the in-repo KeySender implementations. Real OS
// input injection lives behind the transport.KeySender boundary and is
// supplied by the host integration; these senders cover dry runs, tests
// and sequence recording.
package keysend

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nexply/Auto-play/model"
)

// Console prints key activity instead of injecting it. Useful to verify a
// mapping before pointing the tool at the game.
type Console struct {
	mu      sync.Mutex
	pressed map[string]bool
}

func NewConsole() *Console {
	return &Console{pressed: make(map[string]bool)}
}

func (c *Console) Press(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pressed[key] = true
	fmt.Printf("press   %s\n", key)
	return nil
}

func (c *Console) Release(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pressed, key)
	fmt.Printf("release %s\n", key)
	return nil
}

func (c *Console) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.pressed {
		fmt.Printf("release %s\n", key)
		delete(c.pressed, key)
	}
}

// Modifier splits a combo key id into its modifier and base key, e.g.
// "shift+a" -> ("shift", "a"). The modifier is empty for plain keys.
func Modifier(key string) (string, string) {
	if i := strings.IndexByte(key, '+'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

// Recorder captures key activity as a timestamped event log, the same
// shape the sequence exporter writes. It doubles as the test sender.
type Recorder struct {
	mu     sync.Mutex
	start  time.Time
	events []model.KeyEvent
}

func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

func (r *Recorder) Press(key string) error {
	r.record(key, true)
	return nil
}

func (r *Recorder) Release(key string) error {
	r.record(key, false)
	return nil
}

func (r *Recorder) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	held := make(map[string]bool)
	for _, ev := range r.events {
		held[ev.Key] = ev.Press
	}
	ms := time.Since(r.start).Seconds() * 1000
	for key, pressed := range held {
		if pressed {
			r.events = append(r.events, model.KeyEvent{Key: key, Press: false, Time: ms})
		}
	}
}

func (r *Recorder) record(key string, press bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, model.KeyEvent{
		Key:   key,
		Press: press,
		Time:  time.Since(r.start).Seconds() * 1000,
	})
}

// Log returns a copy of everything recorded so far.
func (r *Recorder) Log() model.EventLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.EventLog{Events: append([]model.KeyEvent(nil), r.events...)}
}
