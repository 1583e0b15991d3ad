package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nexply/Auto-play/keymap"
)

var rootCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "MIDI auto-play for the in-game 21/36-key instrument",
	Long: `Reads MIDI files, remaps their notes onto the game's pentatonic
key-set and drives the result as simulated keypresses or sound preview.`,
}

var (
	flagMode      int
	flagPresetDir string
)

func init() {
	rootCmd.PersistentFlags().IntVar(&flagMode, "mode", 21, "instrument layout: 21 or 36 keys")
	rootCmd.PersistentFlags().StringVar(&flagPresetDir, "presets", defaultPresetDir(), "preset directory")
}

func defaultPresetDir() string {
	if p := os.Getenv("AUTOPLAY_PRESET_DIR"); p != "" {
		return p
	}
	return "presets"
}

func activeKeymap() *keymap.Config {
	if flagMode == 36 {
		return keymap.ForMode(keymap.ModeThirtySixKey)
	}
	return keymap.ForMode(keymap.ModeTwentyOneKey)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
