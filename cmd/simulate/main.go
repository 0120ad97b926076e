// Command simulate runs snakes-and-ladders simulations from the command
// line: batch runs with aggregate statistics, config validation, and luck
// classification of board squares.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jebob/snakes-and-ladders/game/config"
	"github.com/jebob/snakes-and-ladders/game/dice"
	"github.com/jebob/snakes-and-ladders/game/engine"
	"github.com/jebob/snakes-and-ladders/game/stats"
)

func main() {
	cmd := &cli.Command{
		Name:  "simulate",
		Usage: "Snakes and ladders simulation toolkit",
		Commands: []*cli.Command{
			runCommand(),
			validateCommand(),
			luckCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a batch of games and print aggregate statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "board config file (defaults to the built-in canonical board)",
			},
			&cli.IntFlag{
				Name:    "games",
				Aliases: []string{"n"},
				Usage:   "number of games to run (defaults to the config's iterations)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print a line per completed game",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			games := int(cmd.Int("games"))
			if games <= 0 {
				games = cfg.Iterations
			}

			b, err := cfg.Board()
			if err != nil {
				return err
			}

			var progress stats.ProgressFunc
			if cmd.Bool("verbose") {
				progress = func(game int, s engine.Stats) {
					fmt.Printf("game %d: %d rolls, %d turns, climbed %d, slid %d\n",
						game, s.RollCount, s.TurnCount, s.ClimbDistance, s.SlideDistance)
				}
			}

			dieSize := cfg.EffectiveDieSize()
			started := time.Now()
			result, err := stats.RunBatchWithProgress(b, games, dieSize,
				func() dice.Roller { return dice.NewRandomDie(dieSize) }, progress)
			if err != nil {
				return err
			}

			fmt.Printf("\nBoard '%s': %d games with a d%d in %v\n\n",
				cfg.Name, games, dieSize, time.Since(started).Round(time.Millisecond))
			printSummary("Rolls", result.Rolls)
			printSummary("Climb distance", result.ClimbDistance)
			printSummary("Slide distance", result.SlideDistance)
			printSummary("Lucky rolls", result.LuckyRolls)
			printSummary("Unlucky rolls", result.UnluckyRolls)
			fmt.Printf("%-16s %d\n", "Biggest climb", result.BiggestTurnClimb)
			fmt.Printf("%-16s %d\n", "Biggest slide", result.BiggestTurnSlide)
			fmt.Printf("%-16s %v\n", "Longest turn", result.LongestTurn)
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate board config files",
		ArgsUsage: "FILE...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return fmt.Errorf("no config files given")
			}

			failed := 0
			for _, file := range files {
				data, err := os.ReadFile(file)
				if err != nil {
					fmt.Printf("FAIL %s: %v\n", file, err)
					failed++
					continue
				}
				cfg, err := config.ParseConfig(data)
				if err != nil {
					fmt.Printf("FAIL %s: %v\n", file, err)
					failed++
					continue
				}
				fmt.Printf("OK   %s: '%s', %d squares, %d snakes, %d ladders\n",
					file, cfg.Name, cfg.Size, len(cfg.Snakes), len(cfg.Ladders))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(files))
			}
			return nil
		},
	}
}

func luckCommand() *cli.Command {
	return &cli.Command{
		Name:  "luck",
		Usage: "Print which squares of a board count as lucky or unlucky",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "board config file (defaults to the built-in canonical board)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			b, err := cfg.Board()
			if err != nil {
				return err
			}

			lucky, unlucky := engine.ComputeLuck(b)
			fmt.Printf("Board '%s' (%d squares)\n", cfg.Name, cfg.Size)
			fmt.Printf("Lucky squares:   %v\n", sortedKeys(lucky))
			fmt.Printf("Unlucky squares: %v\n", sortedKeys(unlucky))
			return nil
		},
	}
}

func loadConfig(path string) (*engine.BoardConfig, error) {
	if path == "" {
		return engine.CanonicalConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.ParseConfig(data)
}

func printSummary(label string, s stats.Summary) {
	fmt.Printf("%-16s min %d, avg %.1f, max %d\n", label, s.Min, s.Avg, s.Max)
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
