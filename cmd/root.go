package cmd

import (
	"fmt"
	"log"
	"os"

	"transflow/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "transflow",
	Short: "TransFlow is a song transition sharing service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting TransFlow server...")
		// server.Start handles its own config loading and startup logging.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
