package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:         "migrate",
		Short:       "Apply pending database migrations",
		Args:        cobra.NoArgs,
		Annotations: noAuth,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("migrate command")

			if err := app.Database.RunMigrations(app.Ctx); err != nil {
				return err
			}
			fmt.Println("✓ Database is up to date")
			return nil
		},
	}
}
