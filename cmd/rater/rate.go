package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/traitgame/similar-backend/internal/client/api"
	"github.com/traitgame/similar-backend/internal/client/game"
	"github.com/traitgame/similar-backend/internal/client/storage"
	"github.com/traitgame/similar-backend/internal/client/stored"
	"github.com/traitgame/similar-backend/internal/logger"
)

const (
	currentMatchKey    = "similarity_game_current_match"
	defaultExpandedKey = "similarity_game_default_expanded"
)

func newRateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Play the rating game: compare trait pairs and rate their similarity.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(cfg.logMode)
			if err != nil {
				return err
			}
			defer log.Sync()

			store := cfg.store(log)
			client, err := cfg.client(log, store)
			if err != nil {
				return err
			}

			// Hydrate before the first reconciliation; acquiring a match
			// earlier could orphan one persisted by a previous run.
			matchID := stored.New(store, currentMatchKey, "", 0)
			if err := matchID.Load(cmd.Context()); err != nil {
				log.Warn("Hydration failed, starting fresh", "error", err)
			}

			// The instructions preference is session-scoped: it lives in a
			// memory store so every run starts expanded again.
			expanded := stored.New(storage.NewMemStore(), defaultExpandedKey, true, 0)
			if err := expanded.Load(cmd.Context()); err != nil {
				log.Warn("Hydration failed, starting fresh", "error", err)
			}

			controller := game.NewController(client, matchID, log)
			return runGame(cmd.Context(), controller, client, expanded, log)
		},
	}
}

func runGame(ctx context.Context, controller *game.Controller, client *api.Client, expanded *stored.State[bool], log *logger.Logger) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println(introText(ctx, expanded))

		if err := controller.Reconcile(ctx); err != nil {
			fmt.Printf("Could not load a pair (%v), press enter to retry or q to quit.\n", err)
			if quitRequested(reader) {
				return nil
			}
			continue
		}

		match := controller.Current()
		if match == nil {
			continue
		}

		count, err := client.FetchSessionRatedCount(ctx)
		if err == nil {
			fmt.Printf("You've rated %d %s so far!\n\n", count, plural(count, "pair", "pairs"))
		}

		fmt.Printf("  1: %s\n  2: %s\n\n", match.Text1.Text, match.Text2.Text)

		if !promptRating(ctx, reader, controller) {
			return nil
		}

		if err := showResults(ctx, controller, client); err != nil {
			log.Warn("Stats fetch failed", "error", err)
		}

		fmt.Println("Press enter for the next pair, or q to quit.")
		if quitRequested(reader) {
			return nil
		}
		if err := controller.NextPair(ctx); err != nil {
			fmt.Printf("Could not get the next pair: %v\n", err)
		}
	}
}

// introText renders the instructions for the current cycle and collapses the
// preference after the expanded form has been shown once.
func introText(ctx context.Context, expanded *stored.State[bool]) string {
	if v, _ := expanded.Get(); !v {
		return "Rate how similar the two traits are (0-10)."
	}
	_ = expanded.Set(ctx, false)
	return "Compare the two traits below and rate how similar they are\n" +
		"on a scale from 0 to 10. How you define similarity is up to you!"
}

// promptRating reads ratings until one submits successfully. Returns false
// when the user quits.
func promptRating(ctx context.Context, reader *bufio.Reader, controller *game.Controller) bool {
	for {
		fmt.Print("How similar are these traits? (0-10, q to quit): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		line = strings.TrimSpace(line)
		if line == "q" || line == "quit" {
			return false
		}

		value, err := strconv.ParseFloat(line, 64)
		if err != nil {
			fmt.Println("Please enter a number between 0 and 10.")
			continue
		}

		controller.SetPending(value)
		if err := controller.Submit(ctx); err != nil {
			// Pending value survives; the user may simply try again.
			fmt.Printf("Could not submit rating: %v\n", err)
			continue
		}
		return true
	}
}

func showResults(ctx context.Context, controller *game.Controller, client *api.Client) error {
	match := controller.Current()
	rating := controller.LastRating()
	if match == nil || rating == nil {
		return nil
	}

	// Fetch both aggregates concurrently.
	var (
		stats *api.TraitPairStats
		count int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = client.FetchTraitPairStats(gctx, match.Text1.ID, match.Text2.ID)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = client.FetchSessionRatedCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("\nYour rating: %.3f\n", *rating)
	summary := game.Summary{UserRating: *rating, Stats: stats}
	if summary.FirstRater() {
		fmt.Println("You're the first person to rate this pair!")
	} else {
		fmt.Printf("Average: %.3f across %d ratings.\n", stats.AverageResult, stats.Count)
		fmt.Printf("Your rating is %.3f points %s the average.\n", abs(summary.Difference()), summary.Direction())
	}
	fmt.Printf("You've rated %d %s so far.\n\n", count, plural(count, "pair", "pairs"))
	return nil
}

func quitRequested(reader *bufio.Reader) bool {
	line, err := reader.ReadString('\n')
	if err != nil {
		return true
	}
	line = strings.TrimSpace(line)
	return line == "q" || line == "quit"
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
