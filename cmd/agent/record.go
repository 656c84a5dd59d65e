package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fieldbot/agent/internal/config"
	"fieldbot/agent/internal/feed"
	"fieldbot/agent/internal/route"
)

var (
	recordLoop    bool
	recordReverse bool
	recordZone    string
)

var recordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record a new route from the live position feed",
	Long: "Walks the recording session until interrupted, then writes the " +
		"accumulated route to the routes directory. Sampling is gated by the " +
		"configured minimum interval and distance; the start and end of the " +
		"route are always captured.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordRoute(args[0])
	},
}

func init() {
	recordCmd.Flags().BoolVar(&recordLoop, "loop", false, "Mark the route as looping")
	recordCmd.Flags().BoolVar(&recordReverse, "reverse", false, "Mark the route as reversing at the end")
	recordCmd.Flags().StringVar(&recordZone, "zone", "", "Zone name stored on the route")
	rootCmd.AddCommand(recordCmd)
}

func recordRoute(name string) error {
	client := feed.NewClient(feed.ClientConfig{
		URL:                cfg.Feed.URL,
		StaleAfter:         config.Seconds(cfg.Feed.StaleAfterSecs),
		ReconnectPerSecond: cfg.Feed.ReconnectPerSec,
		Logger:             log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := client.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("bridge client exited")
		}
	}()

	recorder := route.NewRecorder(route.RecorderConfig{
		MinInterval: config.Seconds(cfg.Recording.MinSampleInterval),
		MinDistance: cfg.Recording.MinSampleDistance,
		Logger:      log,
	})

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			snap, ok := client.Snapshot()
			recorded := recorder.Stop(snap.Position, ok, time.Now())
			if recorded == nil || recorded.Len() == 0 {
				log.Warn("nothing recorded")
				return nil
			}
			recorded.Loop = recordLoop
			recorded.ReverseAtEnd = recordReverse
			recorded.Zone = recordZone
			for _, problem := range recorded.Validate() {
				log.WithField("path", recorded.Name).Warn(problem)
			}

			file := filepath.Join(cfg.Routes.Dir, recorded.Name+".json")
			if err := route.Save(recorded, file); err != nil {
				return err
			}
			log.WithField("file", file).Info("route saved")
			return nil
		case now := <-ticker.C:
			snap, ok := client.Snapshot()
			if !recorder.Recording() {
				if !ok {
					continue
				}
				recorder.Start(name, snap.Position, true, now)
				continue
			}
			recorder.Update(snap.Position, ok, now)
		}
	}
}
