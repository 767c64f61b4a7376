package cmd

import (
	"fmt"
	"os"

	"transflow/config"
	"transflow/db"

	"github.com/spf13/cobra"
)

// keepaliveCmd runs a trivial read against the database so hosted providers
// do not suspend an idle instance. Meant to be scheduled from cron.
var keepaliveCmd = &cobra.Command{
	Use:   "keepalive",
	Short: "Ping the database with a trivial read",
	Long:  `Run one trivial query against the transitions table to keep the database provider from idling the instance. Exits 0 on success, 1 on failure.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectGormDB(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "keepalive: failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		defer db.CloseGormDB()

		var id string
		err := db.GormDB.Table("transitions").Select("id").Limit(1).Scan(&id).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "keepalive: ping query failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("keepalive: database ping successful")
	},
}

func init() {
	rootCmd.AddCommand(keepaliveCmd)
}
