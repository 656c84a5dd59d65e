package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fieldbot/agent/internal/discovery"
)

var discoveriesCmd = &cobra.Command{
	Use:   "discoveries",
	Short: "Inspect the point-of-interest store",
}

var discoveriesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate discovery counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := discovery.NewStore(discovery.Config{
			Dir:    cfg.Discovery.Dir,
			Logger: log,
		})
		if err := store.Load(); err != nil {
			return err
		}

		stats := store.Stats()
		fmt.Printf("resource nodes: %d\n", stats.ResourceNodes)
		fmt.Printf("npcs:           %d (%d vendors, %d quest givers)\n",
			stats.NPCs, stats.Vendors, stats.QuestGivers)
		fmt.Printf("mob spawns:     %d\n", stats.MobSpawns)
		fmt.Printf("total sightings: %d\n", stats.TotalSightings)

		if len(stats.NodesBySkill) > 0 {
			skills := make([]string, 0, len(stats.NodesBySkill))
			for skill := range stats.NodesBySkill {
				skills = append(skills, skill)
			}
			sort.Strings(skills)
			fmt.Println("nodes by skill:")
			for _, skill := range skills {
				fmt.Printf("  %s: %d\n", skill, stats.NodesBySkill[skill])
			}
		}
		return nil
	},
}

func init() {
	discoveriesCmd.AddCommand(discoveriesStatsCmd)
	rootCmd.AddCommand(discoveriesCmd)
}
