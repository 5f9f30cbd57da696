package cmd

import (
	"context"

	"github.com/vibast-solutions/ms-go-contacts/migrations"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down|status>",
	Short:     "Apply or inspect database schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		goose.SetBaseFS(migrations.Migrations)
		if err = goose.SetDialect("mysql"); err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		switch args[0] {
		case "up":
			return goose.UpContext(ctx, db, ".")
		case "down":
			return goose.DownContext(ctx, db, ".")
		default:
			return goose.StatusContext(ctx, db, ".")
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
