package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexply/Auto-play/config"
	"github.com/nexply/Auto-play/keysend"
	"github.com/nexply/Auto-play/sequence"
	"github.com/nexply/Auto-play/sound"
	"github.com/nexply/Auto-play/transport"
)

var (
	playTrack    int
	playPreview  bool
	playOriginal bool
	playSpeed    float64
	playRecord   string
)

func init() {
	playCmd.Flags().IntVar(&playTrack, "track", -1, "track index, -1 for all")
	playCmd.Flags().BoolVar(&playPreview, "preview", false, "sound preview instead of keypresses")
	playCmd.Flags().BoolVar(&playOriginal, "original", false, "preview the original pitches instead of the adjusted ones")
	playCmd.Flags().Float64Var(&playSpeed, "speed", 1.0, "playback speed multiplier")
	playCmd.Flags().StringVar(&playRecord, "record", "", "record the sent keys to a JSON event log")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <file.mid>",
	Short: "Plays a MIDI file through the remapper",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(play(args[0]))
	},
}

func play(path string) error {
	cfg := activeKeymap()
	if err := applyPreset(cfg, path); err != nil {
		return err
	}

	appCfg := config.Load(config.Path())
	opts := []transport.Option{
		transport.WithPollInterval(time.Duration(appCfg.WindowCheckInterval * float64(time.Second))),
		transport.WithKeyCooldown(time.Duration(appCfg.KeyCooldown * float64(time.Second))),
	}
	if playPreview {
		synth := sound.NewSynth()
		if err := synth.Init(); err != nil {
			return fmt.Errorf("audio init: %w", err)
		}
		opts = append(opts, transport.WithSounder(synth))
	}

	// key injection is host-specific; the CLI drives the console sender
	// so the remapped stream can be watched directly
	var sender transport.KeySender = keysend.NewConsole()
	var recorder *keysend.Recorder
	if playRecord != "" {
		recorder = keysend.NewRecorder()
		sender = recorder
	}
	player := transport.NewPlayer(cfg, sender, opts...)

	playOpts := []transport.PlayOption{
		transport.WithTrack(playTrack),
		transport.WithSpeed(playSpeed),
	}
	if playPreview {
		playOpts = append(playOpts, transport.WithPreview(playOriginal))
	}

	if err := player.Play(path, playOpts...); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	defer func() {
		if recorder != nil {
			log := recorder.Log()
			if err := sequence.Save(log, playRecord); err != nil {
				fmt.Printf("could not write recording: %v\n", err)
				return
			}
			fmt.Printf("recorded %v key events to %v\n", len(log.Events), playRecord)
		}
	}()

	for {
		select {
		case <-sigCh:
			fmt.Println("stopping...")
			player.Stop()
			return nil
		case n := <-player.Notifications():
			switch n.Type {
			case transport.NotifyFinished, transport.NotifyStopped:
				fmt.Println("done")
				return nil
			case transport.NotifyAutoPaused:
				fmt.Println("auto-paused (target window lost focus)")
			case transport.NotifyResumed:
				fmt.Println("resumed")
			}
		}
	}
}
