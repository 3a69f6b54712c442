package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const chatTimeLayout = "02 Jan 15:04"

// ChatCmd creates the chat command and its subcommands
func ChatCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read and post messages in an event's discussion",
	}

	cmd.AddCommand(sendChatCmd(app))
	cmd.AddCommand(tailChatCmd(app))

	return cmd
}

func sendChatCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "send <event_id> <message...>",
		Short: "Post a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:1])
			if err != nil {
				return err
			}
			app.Logger.Debug("chat send command", zap.Int64("event_id", ids[0]))

			timeline, err := services.LoadChat(app.Ctx, app.Database, app.Logger, app.Session, ids[0])
			if err != nil {
				return err
			}

			msg, err := services.SendChatMessage(app.Ctx, app.Database, app.Logger, app.Session, timeline, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printChatMessage(msg)
			return nil
		},
	}
}

func tailChatCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tail <event_id>",
		Short: "Print the discussion and follow new messages until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			app.Logger.Debug("chat tail command", zap.Int64("event_id", ids[0]))

			timeline, err := services.LoadChat(app.Ctx, app.Database, app.Logger, app.Session, ids[0])
			if err != nil {
				return err
			}

			fmt.Println()
			for _, msg := range timeline.Messages() {
				printChatMessage(msg)
			}
			fmt.Printf("%s-- following, Ctrl+C to stop --%s\n", colorDim, colorReset)

			return app.Database.ListenChatMessages(app.Ctx, func(row db.ChatMessage) {
				msg := row.Model()
				if timeline.Receive(msg) {
					printChatMessage(msg)
				}
			})
		},
	}
}

func printChatMessage(msg model.ChatMessage) {
	fmt.Printf("%s%s%s %s%s%s: %s\n",
		colorDim, msg.CreatedAt.Local().Format(chatTimeLayout), colorReset,
		colorBold, msg.AuthorName, colorReset,
		msg.Body)
}
