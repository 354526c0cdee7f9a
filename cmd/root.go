package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/autobrr/shabrr/internal/config"
)

const banner = `      _           _
 ___ | |__   __ _| |__  _ __ _ __
/ __|| '_ \ / _' | '_ \| '__| '__|
\__ \| | | | (_| | |_) | |  | |
|___/|_| |_|\__,_|_.__/|_|  |_|`

var configPath string

// cfg holds the loaded config file, or the defaults when there is none.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "shabrr",
	Short: "A tool to compute and verify SHA1 digests",
	Long:  banner + "\n\nshabrr computes, verifies and explains SHA1 digests.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadDefault(configPath)
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/shabrr/config.yaml)")
	rootCmd.AddCommand(sumCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

const commonUsageTemplate = `Usage:
  {{.CommandPath}} [command]

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}

Use "{{.CommandPath}} [command] --help" for more information about a command.
`

// setupCommon prepares the rootCmd with common settings.
func setupCommon() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = false
	rootCmd.SetUsageTemplate(commonUsageTemplate)
}

// Execute configures and runs the root command. An interrupt cancels the
// context handed to the commands.
func Execute() error {
	setupCommon()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// flagOr returns the flag value when it was set on the command line and
// the config value otherwise.
func flagOr[T any](cmd *cobra.Command, name string, flag, fromConfig T) T {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return fromConfig
}
