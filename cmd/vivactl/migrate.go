package main

import (
	"database/sql"
	"errors"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"github.com/vivamos/vivamos/internal/server/repositories/repomanager"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply all pending schema migrations to the PostgreSQL database
named by --dsn or DATABASE_DSN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_DSN")
			}
			if dsn == "" {
				return errors.New("database DSN is required (--dsn or DATABASE_DSN)")
			}

			db, err := sql.Open("pgx", dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			cmd.Println("Running migrations...")
			if err := repomanager.NewPostgresRepositoryManager().RunMigrations(cmd.Context(), db); err != nil {
				return err
			}

			cmd.Println("Migrations completed successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL DSN")

	return cmd
}
