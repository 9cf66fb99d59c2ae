package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version of the CLI.
var version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sqlmirror version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sqlmirror version:", version)
	},
}
