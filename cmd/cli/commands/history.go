package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// ExportHistoryCmd creates the export-history command
func ExportHistoryCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export-history",
		Short: "Write your participation history to the configured Google Sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("export-history command")

			if app.SheetsClient == nil {
				return fmt.Errorf("sheets client is not available")
			}

			history, err := services.ExportHistory(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, app.Session)
			if err != nil {
				return err
			}

			fmt.Printf("\n📤 Exported %d events for %s\n\n", len(history.Rows), history.VolunteerName)
			for _, row := range history.Rows {
				fmt.Printf("  %s  %-32s %-13s %s\n",
					row.Start.Format(dateLayout), truncate(row.EventTitle, 32), row.Status, ratingStars(row.Rating))
			}
			fmt.Println()
			return nil
		},
	}
}
