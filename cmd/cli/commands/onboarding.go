package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

const dateLayout = "2006-01-02"

// OnboardingCmd creates the onboarding command with one subcommand per step
func OnboardingCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Complete your volunteer profile in three steps",
	}

	cmd.AddCommand(onboardingDetailsCmd(app))
	cmd.AddCommand(onboardingPreferencesCmd(app))
	cmd.AddCommand(onboardingAvailabilityCmd(app))

	return cmd
}

func onboardingDetailsCmd(app *AppContext) *cobra.Command {
	var details profile.Details

	cmd := &cobra.Command{
		Use:   "step1",
		Short: "Personal details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("onboarding step1 command")
			v, err := services.CompleteOnboardingStep1(app.Ctx, app.Database, app.Logger, app.Session, details)
			if err != nil {
				return err
			}
			printOnboardingProgress(v)
			return nil
		},
	}

	cmd.Flags().StringVar(&details.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&details.Mobile, "mobile", "", "Mobile number")
	cmd.Flags().IntVar(&details.Age, "age", 0, "Age (16 or over)")
	cmd.Flags().StringVar(&details.Organization, "organization", "", "Organization (optional)")

	return cmd
}

func onboardingPreferencesCmd(app *AppContext) *cobra.Command {
	var prefs profile.WorkPreferences

	cmd := &cobra.Command{
		Use:     "step2",
		Short:   "Work preferences",
		Example: `  onboarding step2 --work-types education,community --in-person --place "Ilford"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("onboarding step2 command", zap.Strings("work_types", prefs.WorkTypes))
			v, err := services.CompleteOnboardingStep2(app.Ctx, app.Database, app.Logger, app.Session, prefs)
			if err != nil {
				return err
			}
			printOnboardingProgress(v)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&prefs.WorkTypes, "work-types", nil, "Work types: education, environment, healthcare, community, events, tech, admin")
	cmd.Flags().BoolVar(&prefs.Virtual, "virtual", false, "Happy to help online")
	cmd.Flags().BoolVar(&prefs.InPerson, "in-person", false, "Happy to help in person")
	cmd.Flags().StringVar(&prefs.PlaceName, "place", "", "Preferred place for in-person work")

	return cmd
}

func onboardingAvailabilityCmd(app *AppContext) *cobra.Command {
	var flags availabilityFlags

	cmd := &cobra.Command{
		Use:     "step3",
		Short:   "Availability",
		Example: `  onboarding step3 --start 2025-07-01 --time morning --days monday,wednesday --weekend`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			availability, err := flags.toModel()
			if err != nil {
				return err
			}
			app.Logger.Debug("onboarding step3 command", zap.Strings("days", availability.Days))

			v, err := services.CompleteOnboardingStep3(app.Ctx, app.Database, app.Logger, app.Session, availability)
			if err != nil {
				return err
			}
			printOnboardingProgress(v)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// AvailabilityCmd creates the availability command
func AvailabilityCmd(app *AppContext) *cobra.Command {
	var flags availabilityFlags

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Replace your availability once onboarding is complete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			availability, err := flags.toModel()
			if err != nil {
				return err
			}
			app.Logger.Debug("availability command", zap.Strings("days", availability.Days))

			v, err := services.UpdateAvailability(app.Ctx, app.Database, app.Logger, app.Session, availability)
			if err != nil {
				return err
			}
			fmt.Printf("\n✓ Availability updated: %s\n\n", describeAvailability(v.Availability))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

type availabilityFlags struct {
	start   string
	end     string
	time    string
	days    []string
	weekend bool
}

func (f *availabilityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "First available date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "Last available date (YYYY-MM-DD, optional)")
	cmd.Flags().StringVar(&f.time, "time", "", "Time of day: morning, afternoon, evening, flexible")
	cmd.Flags().StringSliceVar(&f.days, "days", nil, "Days of the week")
	cmd.Flags().BoolVar(&f.weekend, "weekend", false, "Add saturday and sunday")
}

func (f *availabilityFlags) toModel() (model.Availability, error) {
	var a model.Availability

	if f.start != "" {
		start, err := time.ParseInLocation(dateLayout, f.start, time.Local)
		if err != nil {
			return a, engagement.Invalid("startDate", "expected YYYY-MM-DD, got %q", f.start)
		}
		a.Start = start
	}
	if f.end != "" {
		end, err := time.ParseInLocation(dateLayout, f.end, time.Local)
		if err != nil {
			return a, engagement.Invalid("endDate", "expected YYYY-MM-DD, got %q", f.end)
		}
		a.End = &end
	}
	a.TimePreference = f.time

	days := []string{}
	for _, d := range f.days {
		var err error
		days, err = profile.ToggleDay(days, d, true)
		if err != nil {
			return a, err
		}
	}
	if f.weekend {
		days, _ = profile.ToggleDay(days, profile.Weekend, true)
	}
	a.Days = days

	return a, nil
}

func describeAvailability(a *model.Availability) string {
	if a == nil {
		return "not set"
	}
	until := "onwards"
	if a.End != nil {
		until = "to " + a.End.Format(dateLayout)
	}
	return fmt.Sprintf("%s from %s %s on %v", a.TimePreference, a.Start.Format(dateLayout), until, a.Days)
}

func printOnboardingProgress(v *model.Volunteer) {
	if v.OnboardingCompleted {
		fmt.Printf("\n%s🎉 Your profile is complete. Run 'dashboard' to get started.%s\n\n", colorGreen, colorReset)
		return
	}
	fmt.Printf("\n✓ Saved. Next: 'onboarding step%d'\n\n", v.OnboardingStep)
}
