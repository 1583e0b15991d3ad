package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nexply/Auto-play/db"
	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/midifile"
	"github.com/nexply/Auto-play/optimizer"
	"github.com/nexply/Auto-play/preset"
)

var (
	analyzeTrack  int
	analyzeTop    int
	analyzeRemote string
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeTrack, "track", -1, "track index, -1 for all")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 5, "how many candidate offsets to print")
	analyzeCmd.Flags().StringVar(&analyzeRemote, "remote", "", "DynamoDB endpoint for shared presets")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.mid>",
	Short: "Reports tracks and the best pitch offset for a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := analyze(args[0]); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func analyze(path string) error {
	song, err := midifile.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("%v: %v tracks, %.1fs\n", filepath.Base(path), len(song.Tracks), song.TotalSeconds())
	for _, t := range song.Tracks {
		fmt.Printf("  track %v %q: %v notes, range %v-%v\n",
			t.Index, t.Name, t.NoteCount, t.MinPitch, t.MaxPitch)
	}

	cfg := activeKeymap()
	if err := applyPreset(cfg, path); err != nil {
		return err
	}

	notes, velocities := song.NoteOns(analyzeTrack)
	offset, score := optimizer.FindBestOffset(notes, velocities, cfg)
	fmt.Printf("best offset: %v (score %.3f)\n", offset, score)

	candidates := optimizer.Candidates(notes, velocities, cfg)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	for i, c := range candidates {
		if i >= analyzeTop {
			break
		}
		fmt.Printf("  offset %+d: %.3f\n", c.Offset, c.Score)
	}
	return nil
}

// applyPreset loads the song's saved tuning, preferring the shared remote
// table when an endpoint is given.
func applyPreset(cfg *keymap.Config, path string) error {
	song := filepath.Base(path)

	if analyzeRemote != "" {
		presets, err := db.GetSongPresets(analyzeRemote, []string{song})
		if err != nil {
			return err
		}
		if p, ok := presets[song]; ok {
			fmt.Printf("using shared preset for %v\n", song)
			cfg.Weights = p.Weights
			cfg.OctaveWeights = p.OctaveWeights
			return nil
		}
	}

	mgr, err := preset.NewManager(flagPresetDir)
	if err != nil {
		return err
	}
	p, err := mgr.Load(song, cfg.Mode)
	if err != nil {
		return err
	}
	if p != nil {
		fmt.Printf("using saved preset for %v\n", song)
		cfg.Weights = p.Weights
		cfg.OctaveWeights = p.OctaveWeights
	}
	return nil
}
