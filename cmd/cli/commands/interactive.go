package commands

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (sign in once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without signing in again.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\n🚀 Starting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				switch subCmd.Name() {
				case "interactive", "completion", "help", "serve", "logout":
					continue
				}
				commands[subCmd.Name()] = subCmd
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts, err := parseCommandLine(line)
				if err != nil {
					fmt.Printf("❌ Error parsing command: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}
				cmdName := parts[0]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("👋 Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				topCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				if err := runInteractive(topCmd, parts[1:]); err != nil {
					fmt.Printf("❌ Error: %v\n\n", err)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

// runInteractive resolves subcommands and runs the target's RunE directly, so
// PersistentPreRunE does not initialise the app a second time
func runInteractive(topCmd *cobra.Command, args []string) error {
	targetCmd, cmdArgs, err := topCmd.Find(args)
	if err != nil {
		return err
	}

	if targetCmd.RunE == nil && targetCmd.Run == nil {
		return targetCmd.Help()
	}

	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		if sv, ok := flag.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
			return
		}
		_ = flag.Value.Set(flag.DefValue)
	})

	if err := targetCmd.ParseFlags(cmdArgs); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	cmdArgs = targetCmd.Flags().Args()

	if err := targetCmd.ValidateArgs(cmdArgs); err != nil {
		return err
	}
	if err := targetCmd.ValidateRequiredFlags(); err != nil {
		return err
	}

	if targetCmd.RunE != nil {
		return targetCmd.RunE(targetCmd, cmdArgs)
	}
	targetCmd.Run(targetCmd, cmdArgs)
	return nil
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
		for _, sub := range cmd.Commands() {
			fmt.Printf("    %-28s %s\n", sub.Use, sub.Short)
		}
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting single and
// double quoted strings
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args, nil
}
