package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fieldbot/agent/internal/config"
	"fieldbot/agent/internal/discovery"
	"fieldbot/agent/internal/feed"
	"fieldbot/agent/internal/nav"
	"fieldbot/agent/internal/route"
)

const tickInterval = 100 * time.Millisecond

var runRouteFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the bridge and play a recorded route",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent()
	},
}

func init() {
	runCmd.Flags().StringVar(&runRouteFile, "route", "", "Route file to play")
	runCmd.MarkFlagRequired("route")
	rootCmd.AddCommand(runCmd)
}

func runAgent() error {
	path, err := route.Load(runRouteFile)
	if err != nil {
		return err
	}
	if path.Len() == 0 {
		return fmt.Errorf("route %q has no waypoints", runRouteFile)
	}
	for _, problem := range path.Validate() {
		log.WithField("path", path.Name).Warn(problem)
	}

	store := discovery.NewStore(discovery.Config{
		Dir:         cfg.Discovery.Dir,
		DedupRadius: cfg.Discovery.DedupRadius,
		Logger:      log,
	})
	if err := store.Load(); err != nil {
		return err
	}

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

	var player *nav.Player
	monitor := nav.NewMonitor(nav.StuckConfig{
		CheckInterval:     config.Seconds(cfg.Navigation.StuckCheckInterval),
		ProgressThreshold: cfg.Navigation.ProgressThreshold,
		MaxAttempts:       cfg.Navigation.MaxUnstuckAttempts,
		Logger:            log,
		OnExhausted: func() {
			log.Error("recovery exhausted, aborting route")
			if player != nil {
				player.Stop(client)
			}
		},
	})
	player = nav.NewPlayer(nav.PlayerConfig{
		StoppingDistance: cfg.Navigation.StoppingDistance,
		Logger:           log,
		OnArrive: func(index int, wp route.Waypoint) {
			if wp.Kind != route.KindNormal {
				log.WithFields(logrus.Fields{
					"waypoint": index,
					"type":     wp.Kind,
					"name":     wp.Name,
				}).Info("point of interest reached")
			}
		},
	}, monitor)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	autosave := time.NewTicker(config.Seconds(cfg.Discovery.AutosaveInterval))
	defer autosave.Stop()

	started := false
	for {
		select {
		case <-ctx.Done():
			player.Stop(client)
			return store.Save()
		case <-autosave.C:
			if err := store.Save(); err != nil {
				log.WithError(err).Warn("discovery autosave failed")
			}
		case now := <-ticker.C:
			snap, ok := client.Snapshot()
			if !started {
				// Wait for the first authoritative reading so playback
				// seeds at the nearest waypoint, not blindly at zero.
				if ok {
					player.Play(path, snap.Position, true)
					started = true
				}
				continue
			}

			player.Update(snap, ok, now, client)
			switch player.State() {
			case nav.StateCompleted:
				log.WithField("path", path.Name).Info("route finished")
				return store.Save()
			case nav.StateStopped:
				return store.Save()
			}
		}
	}
}
