package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/internal/kernel"
	"github.com/shashiranjanraj/sweetshop/internal/server"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/migration"
)

var (
	serveWorkers    int
	serveNoSchedule bool
	serveMigrate    bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP API, gRPC health service and queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer k.Close()

		if serveMigrate && k.SQL() != nil {
			n, err := migration.New(k.SQL(), cmd.OutOrStdout()).Run()
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "count", n)
		}

		workers := serveWorkers
		if !cmd.Flags().Changed("workers") {
			workers = config.QueueWorkers()
		}
		return server.Start(k, server.Options{Workers: workers, Schedule: !serveNoSchedule})
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer k.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, r := range k.Router.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Method, r.Path, r.Name)
		}
		return w.Flush()
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List the background tasks serve runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer k.Close()

		for _, task := range k.Schedule.List() {
			fmt.Fprintln(cmd.OutOrStdout(), task)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 0, "in-process queue workers (default QUEUE_WORKERS)")
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-schedule", false, "do not run background tasks")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations before serving (sql backend)")
}
