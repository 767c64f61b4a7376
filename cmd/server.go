package cmd

import (
	"transflow/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TransFlow HTTP server",
	Long:  `Start the TransFlow HTTP server, providing the transition sharing API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
