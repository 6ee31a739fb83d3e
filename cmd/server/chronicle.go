package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"narrative-server/internal/infrastructure/storage"
)

var chronicleCmd = &cobra.Command{
	Use:   "chronicle <path>",
	Short: "Print a saved chronicle file",
	Args:  cobra.ExactArgs(1),
	RunE:  runChronicle,
}

func runChronicle(_ *cobra.Command, args []string) error {
	c, err := storage.LoadChronicle(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Chronicle: seed %d, %d rounds, %d entries\n\n", c.Seed, c.Rounds, len(c.Entries))
	for _, e := range c.Entries {
		fmt.Printf("[round %d, turn %d] %s\n", e.Round, e.Turn, e.Text)
	}
	return nil
}
