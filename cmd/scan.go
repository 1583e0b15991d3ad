package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nexply/Auto-play/config"
	"github.com/nexply/Auto-play/util"
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <dir> [max]",
	Short: "Lists MIDI files under a directory",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var maxNum int
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				panic(err)
			}
			maxNum = n
		}

		paths := util.GatherAllMidiPaths(args[0], maxNum)
		for _, p := range paths {
			fmt.Println(p)
		}
		fmt.Printf("%v midi files\n", len(paths))

		cfg := config.Load(config.Path())
		cfg.LastDirectory = args[0]
		config.Save(config.Path(), cfg)
	},
}
