package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your events, tasks, stats and recent discussions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := services.LoadDashboard(app.Ctx, app.Database, app.Logger, app.Session)
			if err != nil {
				return err
			}

			name := d.Volunteer.FullName
			if name == "" {
				name = d.Volunteer.Email
			}
			fmt.Printf("\n%s👋 Hi %s%s\n", colorBold, name, colorReset)
			if !d.Volunteer.OnboardingCompleted {
				fmt.Printf("%sYour profile is incomplete (step %d of 3). Run 'onboarding step%d'.%s\n",
					colorYellow, d.Volunteer.OnboardingStep, d.Volunteer.OnboardingStep, colorReset)
			}
			fmt.Printf("Skills: %s\n", skillNames(d.Skills))
			fmt.Printf("Stats:  %d tasks completed · %d events registered\n\n", d.Stats.CompletedTasks, d.Stats.RegisteredEvents)

			printSection("📅 Your upcoming events", d.Sections.RegisteredUpcoming, nil)
			printSection("🔎 Upcoming events you could join (★ fits your availability)", d.Sections.NotRegisteredUpcoming, d.MatchesYou)
			printSection("🕘 Past events", d.Sections.Past, nil)

			fmt.Println("✅ Your tasks")
			if len(d.Tasks) == 0 {
				fmt.Printf("  %sNo tasks yet%s\n", colorDim, colorReset)
			}
			for _, t := range d.Tasks {
				fmt.Printf("  #%-5d %s%-12s%s %s %s(%s)%s\n",
					t.ID, statusColor(t.Status), t.Status, colorReset, t.Description, colorDim, t.EventTitle, colorReset)
			}
			fmt.Println()

			fmt.Println("💬 Recent discussions")
			if len(d.RecentMessages) == 0 {
				fmt.Printf("  %sNothing yet%s\n", colorDim, colorReset)
			}
			now := time.Now()
			for _, m := range d.RecentMessages {
				fmt.Printf("  [%s] %s: %s %s%s%s\n",
					m.EventTitle, m.AuthorName, truncate(m.Body, 60), colorDim, relativeTime(now, m.CreatedAt), colorReset)
			}
			fmt.Println()

			return nil
		},
	}
}

func printSection(title string, events []engagement.ListedEvent, matches map[int64]bool) {
	fmt.Println(title)
	if len(events) == 0 {
		fmt.Printf("  %sNone%s\n\n", colorDim, colorReset)
		return
	}
	for _, e := range events {
		star := ""
		if matches[e.Event.ID] {
			star = colorYellow + " ★" + colorReset
		}
		fmt.Printf("  %s%s\n", formatEventLine(e), star)
	}
	fmt.Println()
}

// StatsCmd creates the stats command
func StatsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many tasks you have completed and events you are registered for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := services.GetStats(app.Ctx, app.Database, app.Logger, app.Session)
			if err != nil {
				return err
			}
			fmt.Printf("\nTasks completed:   %d\n", stats.CompletedTasks)
			fmt.Printf("Events registered: %d\n\n", stats.RegisteredEvents)
			return nil
		},
	}
}
