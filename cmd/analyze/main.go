// Command analyze inspects board configs and reports what a player is in
// for: route density, chains, luck distribution, and suspicious geometry.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jebob/snakes-and-ladders/game/board"
	"github.com/jebob/snakes-and-ladders/game/config"
	"github.com/jebob/snakes-and-ladders/game/engine"
)

func main() {
	configPath := flag.String("config", "", "board config file to analyze")
	configDir := flag.String("dir", "", "analyze every config in a directory")
	flag.Parse()

	switch {
	case *configPath != "":
		if err := analyzeFile(*configPath); err != nil {
			log.Fatalf("Failed to analyze %s: %v", *configPath, err)
		}
	case *configDir != "":
		entries, err := os.ReadDir(*configDir)
		if err != nil {
			log.Fatalf("Failed to read directory: %v", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(*configDir, entry.Name())
			if err := analyzeFile(path); err != nil {
				log.Printf("Failed to analyze %s: %v", path, err)
			}
			fmt.Println()
		}
	default:
		fmt.Println("Analyzing the built-in canonical board (use -config or -dir for others)")
		fmt.Println()
		analyze(engine.CanonicalConfig())
	}
}

func analyzeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := config.ParseConfig(data)
	if err != nil {
		return err
	}
	analyze(cfg)
	return nil
}

func analyze(cfg *engine.BoardConfig) {
	b, err := cfg.Board()
	if err != nil {
		log.Fatalf("Config does not build a board: %v", err)
	}

	fmt.Printf("Board '%s': %d squares, %d snakes, %d ladders\n",
		cfg.Name, cfg.Size, len(cfg.Snakes), len(cfg.Ladders))

	climbTotal, slideTotal := 0, 0
	biggestClimb, biggestSlide := 0, 0
	for from, to := range b.Routes {
		if to > from {
			climbTotal += to - from
			if to-from > biggestClimb {
				biggestClimb = to - from
			}
		} else {
			slideTotal += from - to
			if from-to > biggestSlide {
				biggestSlide = from - to
			}
		}
	}
	fmt.Printf("  Climb potential: %d squares (longest ladder %d)\n", climbTotal, biggestClimb)
	fmt.Printf("  Slide potential: %d squares (longest snake %d)\n", slideTotal, biggestSlide)

	// Chains: routes whose destination starts another route
	chains := 0
	for _, to := range b.Routes {
		if _, chained := b.Routes[to]; chained {
			chains++
		}
	}
	if chains > 0 {
		fmt.Printf("  Chained routes: %d\n", chains)
	}

	lucky, unlucky := engine.ComputeLuck(b)
	fmt.Printf("  Lucky squares: %d, unlucky squares: %d\n", len(lucky), len(unlucky))

	for _, warning := range warnings(cfg, b) {
		fmt.Printf("  WARNING: %s\n", warning)
	}
}

// warnings flags geometry that makes a board tedious or degenerate without
// being invalid.
func warnings(cfg *engine.BoardConfig, b *board.Board) []string {
	var out []string

	density := float64(len(b.Routes)) / float64(b.Size)
	if density > 0.25 {
		out = append(out, fmt.Sprintf("route density %.0f%% makes positions very volatile", density*100))
	}

	// A snake guarding the winning square stretches games out
	for _, delta := range []int{1, 2} {
		if to, ok := b.Routes[b.Size-delta]; ok && to < b.Size-delta {
			out = append(out, fmt.Sprintf("snake at %d guards the winning square", b.Size-delta))
		}
	}

	if cfg.MaxTurns > 0 && cfg.MaxTurns < b.Size/cfg.EffectiveDieSize() {
		out = append(out, fmt.Sprintf("max_turns %d is too tight to cross the board", cfg.MaxTurns))
	}

	slideBack := 0
	for from, to := range b.Routes {
		if to < from {
			slideBack += from - to
		}
	}
	if slideBack > b.Size*2 {
		out = append(out, fmt.Sprintf("total slide distance %d dwarfs the board, expect long games", slideBack))
	}
	return out
}
