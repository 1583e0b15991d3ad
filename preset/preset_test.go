package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/model"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	mgr, err := NewManager(t.TempDir())

	assert := assert.New(t)
	assert.NoError(err)

	p := model.Preset{
		Weights:       keymap.DefaultWeights(),
		OctaveWeights: model.OctaveWeights{Low: 0.2, Middle: 0.5, High: 0.3},
	}
	assert.NoError(mgr.Save("my song.mid", keymap.ModeTwentyOneKey, p))

	loaded, err := mgr.Load("my song.mid", keymap.ModeTwentyOneKey)
	assert.NoError(err)
	assert.NotNil(loaded)
	assert.Equal(p, *loaded)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	mgr, err := NewManager(t.TempDir())

	assert := assert.New(t)
	assert.NoError(err)

	p, err := mgr.Load("unknown.mid", keymap.ModeTwentyOneKey)
	assert.NoError(err)
	assert.Nil(p)
}

func TestModesKeptSeparate(t *testing.T) {
	mgr, err := NewManager(t.TempDir())

	assert := assert.New(t)
	assert.NoError(err)

	p := model.Preset{Weights: keymap.DefaultWeights()}
	assert.NoError(mgr.Save("song.mid", keymap.ModeTwentyOneKey, p))

	other, err := mgr.Load("song.mid", keymap.ModeThirtySixKey)
	assert.NoError(err)
	assert.Nil(other)
}

func TestDelete(t *testing.T) {
	mgr, err := NewManager(t.TempDir())

	assert := assert.New(t)
	assert.NoError(err)

	assert.NoError(mgr.Save("song.mid", keymap.ModeTwentyOneKey, model.Preset{}))
	assert.NoError(mgr.Delete("song.mid", keymap.ModeTwentyOneKey))

	p, err := mgr.Load("song.mid", keymap.ModeTwentyOneKey)
	assert.NoError(err)
	assert.Nil(p)

	// deleting twice is fine
	assert.NoError(mgr.Delete("song.mid", keymap.ModeTwentyOneKey))
}

func TestFilenameSanitized(t *testing.T) {
	mgr, err := NewManager(t.TempDir())

	assert := assert.New(t)
	assert.NoError(err)

	// path separators and dots must not escape the preset dir
	assert.NoError(mgr.Save("../../evil/../song.mid", keymap.ModeTwentyOneKey, model.Preset{}))
	p, err := mgr.Load("../../evil/../song.mid", keymap.ModeTwentyOneKey)
	assert.NoError(err)
	assert.NotNil(p)
}
