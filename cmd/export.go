package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexply/Auto-play/midifile"
	"github.com/nexply/Auto-play/optimizer"
	"github.com/nexply/Auto-play/remap"
	"github.com/nexply/Auto-play/sequence"
)

var exportTrack int

func init() {
	exportCmd.Flags().IntVar(&exportTrack, "track", -1, "track index, -1 for all")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file.mid> <out.json>",
	Short: "Exports the remapped key sequence as a replayable JSON log",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(export(args[0], args[1]))
	},
}

func export(path, out string) error {
	cfg := activeKeymap()
	if err := applyPreset(cfg, path); err != nil {
		return err
	}

	song, err := midifile.Load(path)
	if err != nil {
		return err
	}

	notes, velocities := song.NoteOns(exportTrack)
	offset, score := optimizer.FindBestOffset(notes, velocities, cfg)
	fmt.Printf("offset %v (score %.3f)\n", offset, score)

	log := sequence.FromSong(song, cfg, remap.New(cfg, offset), exportTrack)
	if err := sequence.Save(log, out); err != nil {
		return err
	}
	fmt.Printf("wrote %v events to %v\n", len(log.Events), out)
	return nil
}
