package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-hub/pkg/utils"
)

// LoginCmd creates the login command
func LoginCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google (creates your volunteer profile on first sign-in)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.NewVolunteer {
				fmt.Printf("\n✓ Welcome! A volunteer profile was created for %s\n", app.Session.Email)
				fmt.Println("Run 'onboarding step1' to complete your profile.")
				return nil
			}
			name := app.Session.Name
			if name == "" {
				name = app.Session.Email
			}
			fmt.Printf("\n✓ Signed in as %s (%s)\n\n", name, app.Session.Email)
			return nil
		},
	}
}

// LogoutCmd creates the logout command
func LogoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Forget the saved sign-in for this environment",
		Args:        cobra.NoArgs,
		Annotations: noDatabase,
		RunE: func(cmd *cobra.Command, args []string) error {
			utils.ClearToken(app.Env)
			if err := utils.DeleteTokenFile(app.Env); err != nil {
				return err
			}
			fmt.Println("✓ Signed out")
			return nil
		},
	}
}
