package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey-austin/tag_utopia/internal/adapters/idgen"
	"github.com/mikey-austin/tag_utopia/internal/meta"
	"github.com/mikey-austin/tag_utopia/internal/player"
	"github.com/mikey-austin/tag_utopia/internal/player/gst"
	"github.com/mikey-austin/tag_utopia/internal/player/mpdbackend"
	"github.com/mikey-austin/tag_utopia/internal/player/vlc"
	"github.com/mikey-austin/tag_utopia/internal/tu"
)

func playCommand() *cobra.Command {
	var startPath string
	var volume int

	cmd := &cobra.Command{
		Use:   "play [query]",
		Short: "Play matching tracks in the foreground",
		Long: "Play every matching track in library order through the configured\n" +
			"backend. Playback advances automatically and stops at the end of\n" +
			"the listing. Interrupt with Ctrl-C.",
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			if err := app.loadLibrary(cmd.Context()); err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			view := app.service.View(query)
			if view.Len() == 0 {
				return usageError("no tracks match")
			}

			start := view.At(0)
			if startPath != "" {
				idx := view.IndexOf(startPath)
				if idx < 0 {
					return usageError(fmt.Sprintf("%s is not in the listing", startPath))
				}
				start = view.At(idx)
			}

			backend, closeBackend, err := buildBackend(app.cfg.Player)
			if err != nil {
				return err
			}
			defer closeBackend()

			sessionID := idgen.Generator{}.NewID()
			log := app.log.Named("player").With(zap.String("session_id", sessionID))

			interval := time.Duration(app.cfg.Player.PollMS) * time.Millisecond
			ctrl := player.NewController(log, backend, interval)
			defer ctrl.Close()
			ctrl.SetView(view)

			if !cmd.Flags().Changed("volume") {
				volume = app.cfg.Player.Volume
			}
			if err := ctrl.SetVolume(volume); err != nil {
				return err
			}
			if err := ctrl.Load(start); err != nil {
				return err
			}
			if err := ctrl.Play(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for {
				select {
				case <-ctx.Done():
					return ctrl.Stop()
				case ev := <-ctrl.Events():
					switch ev.Kind {
					case player.EventTrack:
						if !app.quiet {
							pterm.Info.Printfln("playing %s - %s",
								ev.Track.Record.Value(meta.FieldArtist), ev.Track.DisplayTitle())
						}
					case player.EventState:
						if ev.Err != nil {
							return ev.Err
						}
						if ev.State == player.Stopped {
							if !app.quiet {
								pterm.Info.Printfln("end of listing")
							}
							return nil
						}
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&startPath, "start", "", "start from this file instead of the first match")
	cmd.Flags().IntVar(&volume, "volume", 0, "playback volume in percent")

	return cmd
}

func buildBackend(cfg tu.PlayerConfig) (player.Backend, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Backend {
	case "vlc":
		timeout := time.Duration(cfg.VLC.TimeoutMS) * time.Millisecond
		driver, err := vlc.NewDriver(cfg.VLC.URL, cfg.VLC.User, cfg.VLC.Pass, timeout)
		if err != nil {
			return nil, nil, err
		}
		return driver, noClose, nil
	case "mpd":
		driver, err := mpdbackend.NewDriver(cfg.MPD.Network, cfg.MPD.Address, cfg.MPD.Password)
		if err != nil {
			return nil, nil, err
		}
		return driver, driver.Close, nil
	case "gst", "gstreamer":
		driver, err := gst.NewDriver(cfg.GStreamer.Pipeline, cfg.GStreamer.Device)
		if err != nil {
			return nil, nil, err
		}
		return driver, noClose, nil
	}
	return nil, nil, usageError(fmt.Sprintf("unknown player backend %q", cfg.Backend))
}
