// Package preset persists per-song optimizer tunings as JSON files, keyed
// by song filename and keymap mode.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/model"
)

type Manager struct {
	dir string
}

func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = "presets"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("preset: creating dir: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// path builds the preset filename from the song name, stripped of
// anything that doesn't belong in a filename, suffixed by mode.
func (m *Manager) path(song string, mode keymap.Mode) string {
	var b strings.Builder
	for _, c := range song {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == ' ', c == '-', c == '_':
			b.WriteRune(c)
		}
	}
	return filepath.Join(m.dir, fmt.Sprintf("%s.%s.json", b.String(), mode))
}

func (m *Manager) Save(song string, mode keymap.Mode, p model.Preset) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path(song, mode), data, 0644)
}

// Load returns (nil, nil) when no preset exists for the song.
func (m *Manager) Load(song string, mode keymap.Mode) (*model.Preset, error) {
	data, err := os.ReadFile(m.path(song, mode))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p model.Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("preset: decoding %v: %w", song, err)
	}
	return &p, nil
}

func (m *Manager) Delete(song string, mode keymap.Mode) error {
	err := os.Remove(m.path(song, mode))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
