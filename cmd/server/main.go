// narrative-server runs autonomous story campaigns: procedurally generated
// maps, goal-driven agents taking turns, and a diary of what happened.
//
// Usage:
//
//	narrative-server serve      - Run a campaign with a spectator HTTP/websocket server
//	narrative-server simulate   - Run a headless campaign and print the diary
//	narrative-server chronicle  - Print a previously saved chronicle file
//	narrative-server version    - Show build information
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"narrative-server/internal/engine"
	"narrative-server/pkg/logger"
)

var (
	// Global flags
	flagConfig string
	flagSeed   int64
	flagDBPath string
)

func main() {
	logger.Init()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "narrative-server",
	Short: "Turn-based narrative world engine",
	Long: `narrative-server simulates a small fantasy world: agents pick goals from
their current state, walk toward their targets, fight, rest and explore,
one turn at a time, while a storyteller writes everything into a diary.

Examples:
  narrative-server serve --addr :8080
  narrative-server simulate --rounds 20 --seed 42
  narrative-server chronicle runs/campaign.chronicle.zst`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = from config or time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the campaign database")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(chronicleCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (engine.Config, error) {
	cfg, err := engine.LoadConfig(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	return cfg, nil
}
