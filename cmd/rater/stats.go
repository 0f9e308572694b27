package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traitgame/similar-backend/internal/logger"
)

func newStatsCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <text-id-1> <text-id-2>",
		Short: "Show the aggregate rating statistics for a trait pair.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(cfg.logMode)
			if err != nil {
				return err
			}
			defer log.Sync()

			client, err := cfg.client(log, cfg.store(log))
			if err != nil {
				return err
			}

			stats, err := client.FetchTraitPairStats(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if stats.Count == 0 {
				fmt.Println("This pair has not been rated yet.")
				return nil
			}
			fmt.Printf("Ratings: %d\n", stats.Count)
			fmt.Printf("Average: %.3f\n", stats.AverageResult)
			return nil
		},
	}
}
