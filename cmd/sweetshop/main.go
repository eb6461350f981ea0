// Command sweetshop runs the sweet shop API and its maintenance tasks.
//
//	sweetshop serve
//	sweetshop migrate
//	sweetshop seed
//	sweetshop route:list
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/sweetshop/database/migrations"
)

var rootCmd = &cobra.Command{
	Use:           "sweetshop",
	Short:         "Sweet shop inventory and ordering API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, routeListCmd)
	rootCmd.AddCommand(migrateCmd, migrateRollbackCmd, migrateStatusCmd, seedCmd)
	rootCmd.AddCommand(queueWorkCmd, queueFailedCmd, scheduleListCmd)
}
