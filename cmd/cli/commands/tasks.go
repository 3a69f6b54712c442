package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// TasksCmd creates the tasks command and its subcommands
func TasksCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "View, claim and update event tasks",
	}

	cmd.AddCommand(listTasksCmd(app))
	cmd.AddCommand(claimTasksCmd(app))
	cmd.AddCommand(updateTasksCmd(app))
	cmd.AddCommand(releaseTaskCmd(app))

	return cmd
}

func listTasksCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <event_id>",
		Short: "List the tasks of an event you are registered for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			app.Logger.Debug("tasks list command", zap.Int64("event_id", ids[0]))

			tasks, err := services.LoadEventTasks(app.Ctx, app.Database, app.Logger, app.Session, ids[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n📋 Available tasks (%d)\n", len(tasks.Claimable))
			for _, c := range tasks.Claimable {
				fmt.Printf("  #%-5d %s\n", c.Task.ID, c.Task.Description)
				if len(c.Match.Matching) > 0 {
					fmt.Printf("         %s✓ %s%s\n", colorGreen, skillNames(c.Match.Matching), colorReset)
				}
				if len(c.Match.Missing) > 0 {
					fmt.Printf("         %s✗ %s%s\n", colorRed, skillNames(c.Match.Missing), colorReset)
				}
			}

			fmt.Printf("\n✅ Your tasks (%d)\n", len(tasks.Mine))
			for _, t := range tasks.Mine {
				printTask(t)
			}

			if tasks.Taken > 0 {
				fmt.Printf("\n%s%d tasks taken by other volunteers%s\n", colorDim, tasks.Taken, colorReset)
			}
			fmt.Println()
			return nil
		},
	}
}

func claimTasksCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <task_id> [task_id...]",
		Short: "Claim one or more unassigned tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			app.Logger.Debug("tasks claim command", zap.Int64s("task_ids", ids))

			claimed, err := services.ClaimTasks(app.Ctx, app.Database, app.Logger, app.Session, ids)
			fmt.Println()
			for _, id := range claimed {
				fmt.Printf("%s✓ Claimed task %d%s\n", colorGreen, id, colorReset)
			}
			for _, msg := range joinedMessages(err) {
				fmt.Printf("%s✗ %s%s\n", colorRed, msg, colorReset)
			}
			fmt.Println()

			if err != nil && len(claimed) == 0 {
				return fmt.Errorf("no tasks claimed")
			}
			return nil
		},
	}
}

func updateTasksCmd(app *AppContext) *cobra.Command {
	var statusFlag string
	var feedbackFlag string

	cmd := &cobra.Command{
		Use:   "update <task_id> [task_id...]",
		Short: "Change the status or feedback of your tasks",
		Example: `  tasks update 12 --status in_progress
  tasks update 12 13 --status complete --feedback "All done"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			var status *model.TaskStatus
			if cmd.Flags().Changed("status") {
				parsed, err := engagement.ParseTaskStatus(statusFlag)
				if err != nil {
					return err
				}
				status = &parsed
			}
			var feedback *string
			if cmd.Flags().Changed("feedback") {
				feedback = &feedbackFlag
			}
			if status == nil && feedback == nil {
				return fmt.Errorf("nothing to update: pass --status or --feedback")
			}

			changes := make([]services.TaskChange, 0, len(ids))
			for _, id := range ids {
				changes = append(changes, services.TaskChange{TaskID: id, Status: status, Feedback: feedback})
			}

			app.Logger.Debug("tasks update command", zap.Int64s("task_ids", ids))

			committed, err := services.SubmitTaskChanges(app.Ctx, app.Database, app.Logger, app.Session, changes)
			for _, id := range committed {
				fmt.Printf("%s✓ Updated task %d%s\n", colorGreen, id, colorReset)
			}
			var batchErr *engagement.BatchError
			if errors.As(err, &batchErr) && len(batchErr.Pending) > 0 {
				fmt.Printf("%sStill to submit: %v%s\n", colorYellow, batchErr.Pending, colorReset)
			}
			if err != nil {
				return err
			}
			if len(committed) == 0 {
				fmt.Println("No changes to submit")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "New status: assigned, in_progress, complete")
	cmd.Flags().StringVar(&feedbackFlag, "feedback", "", "Feedback on the task")

	return cmd
}

func releaseTaskCmd(app *AppContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "release <task_id>",
		Short: "Hand one of your tasks back so someone else can claim it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			app.Logger.Debug("tasks release command", zap.Int64("task_id", ids[0]), zap.Bool("confirmed", confirmed))

			if err := services.ReleaseTask(app.Ctx, app.Database, app.Logger, app.Session, ids[0], confirmed); err != nil {
				if errors.Is(err, engagement.ErrConfirmationRequired) {
					return fmt.Errorf("%w: re-run with --yes", err)
				}
				return err
			}
			fmt.Printf("\n✓ Released task %d\n\n", ids[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm the release")

	return cmd
}

func printTask(t model.Task) {
	fmt.Printf("  #%-5d %s%-12s%s %s\n", t.ID, statusColor(t.Status), t.Status, colorReset, t.Description)
	if t.Feedback != "" {
		fmt.Printf("         %s“%s”%s\n", colorDim, truncate(t.Feedback, 60), colorReset)
	}
}

// joinedMessages splits an errors.Join result into its messages
func joinedMessages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
