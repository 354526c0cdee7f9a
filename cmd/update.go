package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repoSlug = "autobrr/shabrr"

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:                   "update",
	Short:                 "Update shabrr to the latest release",
	Args:                  cobra.NoArgs,
	RunE:                  runUpdate,
	DisableFlagsInUseLine: true,
	SilenceUsage:          true,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report whether a newer release exists")
	updateCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}} [flags]

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot update a development build (version %q)", version)
	}

	latest, found, err := selfupdate.DetectLatest(cmd.Context(), selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repoSlug)
	}

	out := cmd.OutOrStdout()
	if latest.LessOrEqual(current.String()) {
		fmt.Fprintf(out, "shabrr is up to date (%s)\n", current)
		return nil
	}
	if updateCheckOnly {
		fmt.Fprintf(out, "shabrr %s is available (current %s)\n", latest.Version(), current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := selfupdate.UpdateTo(cmd.Context(), latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
