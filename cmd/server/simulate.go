package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"narrative-server/internal/engine"
)

var (
	flagRounds    int
	flagDelayMs   int
	flagChronicle string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless campaign and print the diary",
	Long: `Run a bounded campaign without any server and print the resulting
diary to stdout. With a fixed --seed the run is fully reproducible.

Examples:
  narrative-server simulate --rounds 20 --seed 42
  narrative-server simulate --rounds 50 --chronicle runs/campaign.chronicle.zst`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagRounds, "rounds", 10, "Number of rounds to simulate")
	simulateCmd.Flags().IntVar(&flagDelayMs, "delay-ms", 0, "Delay between turns in milliseconds")
	simulateCmd.Flags().StringVar(&flagChronicle, "chronicle", "", "Write the diary to this chronicle file")
}

func runSimulate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.MaxRounds = flagRounds
	cfg.TurnDelayMs = flagDelayMs
	if flagChronicle != "" {
		cfg.ChroniclePath = flagChronicle
	}

	svc, err := engine.NewService(cfg)
	if err != nil {
		return fmt.Errorf("initialize campaign: %w", err)
	}

	svc.Run()

	for _, e := range svc.Diary.Entries() {
		fmt.Printf("[round %d, turn %d] %s\n", e.Round, e.Turn, e.Text)
	}
	fmt.Printf("\n%d rounds, %d turns, seed %d\n",
		svc.Scheduler.CurrentRound(), svc.Scheduler.GlobalTurn(), cfg.Seed)
	return nil
}
