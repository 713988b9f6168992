package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	assignCmd.Flags().Int("courts", 2, "Number of courts")
	assignCmd.Flags().Int64("seed", 1, "Random seed")
	rootCmd.AddCommand(assignCmd)

	simulateCmd.Flags().Int("players", 12, "Players in each simulated session")
	simulateCmd.Flags().Int("courts", 2, "Courts in each simulated session")
	simulateCmd.Flags().Int("matches", 60, "Matches completed per session")
	simulateCmd.Flags().Int("runs", 8, "Number of sessions to simulate")
	simulateCmd.Flags().Int64("seed", 1, "Seed of the first run; run i uses seed+i")
	rootCmd.AddCommand(simulateCmd)
}

type rosterFile struct {
	Players []rotation.Player           `json:"players"`
	Weights []rotation.PreferenceWeight `json:"weights"`
}

var assignCmd = &cobra.Command{
	Use:   "assign <roster.json>",
	Short: "Compute an assignment for a roster without a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courts, _ := cmd.Flags().GetInt("courts")
		seed, _ := cmd.Flags().GetInt64("seed")

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		var roster rosterFile
		if err := json.Unmarshal(raw, &roster); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		a := rotation.New(rotation.WithSeed(seed)).GenerateOptimalTeams(roster.Players, courts, roster.Weights)
		if result := rotation.ValidateAssignment(a); !result.IsValid {
			return fmt.Errorf("engine produced an invalid assignment: %v", result.Errors)
		}
		out, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

type simulation struct {
	Seed       int64
	Spread     int
	StdDev     float64
	Violations int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play many seeded sessions locally and report how evenly games were shared",
	RunE: func(cmd *cobra.Command, args []string) error {
		players, _ := cmd.Flags().GetInt("players")
		courts, _ := cmd.Flags().GetInt("courts")
		matches, _ := cmd.Flags().GetInt("matches")
		runs, _ := cmd.Flags().GetInt("runs")
		seed, _ := cmd.Flags().GetInt64("seed")
		if courts < 1 || runs < 1 {
			return fmt.Errorf("courts and runs must be positive")
		}

		results := make([]simulation, runs)
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(runtime.NumCPU())
		for i := 0; i < runs; i++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				r, err := simulate(seed+int64(i), players, courts, matches)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, r := range results {
			fmt.Printf("seed=%d spread=%d stddev=%.3f violations=%d\n", r.Seed, r.Spread, r.StdDev, r.Violations)
		}
		worst := lo.MaxBy(results, func(a, b simulation) bool { return a.Spread > b.Spread })
		fmt.Printf("worst spread %d (seed %d)\n", worst.Spread, worst.Seed)
		return nil
	},
}

func simulate(seed int64, players, courts, matches int) (simulation, error) {
	e := rotation.New(rotation.WithSeed(seed))
	s := rotation.Session{
		ID:       fmt.Sprintf("sim-%d", seed),
		Settings: rotation.Settings{CourtCount: courts, QueueTarget: rotation.DefaultQueueTarget},
	}
	for i := 0; i < courts; i++ {
		s.Courts = append(s.Courts, rotation.Court{Number: i + 1, Status: rotation.CourtEmpty})
	}
	for i := 0; i < players; i++ {
		s.Players = append(s.Players, rotation.Player{ID: fmt.Sprintf("p%02d", i+1)})
	}

	s = e.StartRound(s)
	result := simulation{Seed: seed}
	for step := 0; step < matches; step++ {
		court := step%courts + 1
		if s.Courts[court-1].Match == nil {
			continue
		}
		next, err := e.CompleteMatch(s, court)
		if err != nil {
			return result, fmt.Errorf("seed %d step %d: %w", seed, step, err)
		}
		s = next
		if check := rotation.ValidateSessionIntegrity(s); !check.IsValid {
			result.Violations += len(check.Errors)
		}
	}

	games := lo.Map(s.Players, func(p rotation.Player, _ int) int { return p.GamesPlayed })
	result.Spread = lo.Max(games) - lo.Min(games)
	sd, err := stats.StandardDeviationPopulation(stats.LoadRawData(games))
	if err != nil {
		return result, err
	}
	result.StdDev = sd
	return result, nil
}
