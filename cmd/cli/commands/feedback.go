package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// FeedbackCmd creates the feedback command
func FeedbackCmd(app *AppContext) *cobra.Command {
	var rating int
	var text string

	cmd := &cobra.Command{
		Use:     "feedback <event_id>",
		Short:   "Rate an event you registered for",
		Long:    "Submit a 1-5 rating and optional comment. Submitting again replaces your earlier feedback.",
		Example: `  feedback 42 --rating 5 --text "Great morning, well organised"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			app.Logger.Debug("feedback command", zap.Int64("event_id", ids[0]), zap.Int("rating", rating))

			reg, mode, err := services.SubmitFeedback(app.Ctx, app.Database, app.Logger, app.Session, ids[0], rating, text)
			if err != nil {
				return err
			}

			verb := "Saved"
			if mode == engagement.FeedbackUpdate {
				verb = "Updated"
			}
			fmt.Printf("\n✓ %s feedback for event %d: %s\n\n", verb, ids[0], ratingStars(reg.Rating))
			return nil
		},
	}

	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Rating from 1 to 5")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Comment")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}
