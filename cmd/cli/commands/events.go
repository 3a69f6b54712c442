package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// EventsCmd creates the events command
func EventsCmd(app *AppContext) *cobra.Command {
	var input engagement.FilterInput

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Browse events, optionally filtered",
		Long: `Browse every event with your registration status.

Filters combine: an event is shown when it matches every filter given.
Within one filter, any of the listed values matches.`,
		Example: `  events --category education,community --window next7days
  events --status registered --location virtual
  events --from 2025-07-01 --to 2025-07-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := engagement.ParseFilterSet(services.ApplyFilterDefaults(app.Cfg, input))
			if err != nil {
				return err
			}

			app.Logger.Debug("events command",
				zap.Strings("statuses", input.Statuses),
				zap.Strings("categories", input.Categories),
				zap.Strings("locations", input.Locations),
				zap.String("window", string(criteria.Window.Kind)))

			events, err := services.BrowseEvents(app.Ctx, app.Database, app.Logger, app.Session, criteria)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d events:\n\n", len(events))
			for _, e := range events {
				fmt.Printf("  %s\n", formatEventLine(e))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&input.Statuses, "status", nil, "Registration status: registered, not-registered")
	cmd.Flags().StringSliceVar(&input.Categories, "category", nil, "Category: community, education, environment, healthcare, fundraising, other")
	cmd.Flags().StringSliceVar(&input.Locations, "location", nil, "Location type: physical, virtual")
	cmd.Flags().StringVar(&input.Window, "window", "", "Time window: all, next7days, nextmonth, custom")
	cmd.Flags().StringVar(&input.From, "from", "", "Custom window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.To, "to", "", "Custom window end (YYYY-MM-DD)")

	return cmd
}

// RegisterCmd creates the register command
func RegisterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "register <event_id>",
		Short: "Register for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			if _, err := services.RegisterForEvent(app.Ctx, app.Database, app.Notifier(), app.Logger, app.Session, ids[0]); err != nil {
				return err
			}
			fmt.Printf("\n✓ You are registered for event %d\n\n", ids[0])
			return nil
		},
	}
}

// WithdrawCmd creates the withdraw command
func WithdrawCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <event_id>",
		Short: "Withdraw your registration for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			if _, err := services.WithdrawRegistration(app.Ctx, app.Database, app.Logger, app.Session, ids[0]); err != nil {
				return err
			}
			fmt.Printf("\n✓ Withdrawn from event %d\n\n", ids[0])
			return nil
		},
	}
}
