package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"narrative-server/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.String())
	},
}
