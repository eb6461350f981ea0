package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/database/seeders"
	"github.com/shashiranjanraj/sweetshop/internal/kernel"
	"github.com/shashiranjanraj/sweetshop/pkg/database"
	"github.com/shashiranjanraj/sweetshop/pkg/migration"
)

// withSQL opens the relational store for commands that only make sense on
// the sql backend.
func withSQL(fn func(db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	if config.StoreDriver() != "sql" {
		return fmt.Errorf("STORE_DRIVER=%s has no schema migrations; mongo indexes are created on boot", config.StoreDriver())
	}
	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *gorm.DB) error {
			n, err := migration.New(db, cmd.OutOrStdout()).Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", n)
			return nil
		})
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:     "migrate:rollback",
	Aliases: []string{"migrate:down"},
	Short:   "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *gorm.DB) error {
			n, err := migration.New(db, cmd.OutOrStdout()).Rollback()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) rolled back\n", n)
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show which migrations have run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *gorm.DB) error {
			statuses, err := migration.New(db, cmd.OutOrStdout()).Status()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
			for _, s := range statuses {
				batch := "-"
				if s.Ran {
					batch = fmt.Sprint(s.Batch)
				}
				fmt.Fprintf(w, "%s\t%t\t%s\n", s.Name, s.Ran, batch)
			}
			return w.Flush()
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and starter sweets",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer k.Close()

		if k.SQL() != nil {
			if _, err := migration.New(k.SQL(), cmd.OutOrStdout()).Run(); err != nil {
				return err
			}
		}
		return seeders.RunAll(cmd.Context(), k.Stores, cmd.OutOrStdout())
	},
}
