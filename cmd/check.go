package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobrr/shabrr/internal/checksum"
	"github.com/autobrr/shabrr/internal/display"
)

var (
	checkVerbose  bool
	checkQuiet    bool
	checkStatus   bool
	checkStrict   bool
	checkWarn     bool
	checkProgress bool
	checkWorkers  int
)

var checkCmd = &cobra.Command{
	Use:   "check <checksum-file>",
	Short: "Verify files against a list of SHA1 digests",
	Long: `Reads SHA1 checksum lines, as written by "shabrr sum" or sha1sum, and
checks every listed file. Both GNU ("<digest>  <file>") and BSD
("SHA1 (<file>) = <digest>") lines are accepted. Use - to read the list
from standard input.`,
	Args:                       cobra.ExactArgs(1),
	RunE:                       runCheck,
	DisableFlagsInUseLine:      true,
	SuggestionsMinimumDistance: 1,
	SilenceUsage:               true,
}

func init() {
	checkCmd.Flags().SortFlags = false
	checkCmd.Flags().BoolP("help", "h", false, "help for check")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "show read errors and a summary")
	checkCmd.Flags().BoolVar(&checkQuiet, "quiet", false, "don't print OK for each successfully verified file")
	checkCmd.Flags().BoolVar(&checkStatus, "status", false, "don't output anything, the exit code shows success")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "exit non-zero for improperly formatted checksum lines")
	checkCmd.Flags().BoolVar(&checkWarn, "warn", false, "list improperly formatted checksum lines")
	checkCmd.Flags().BoolVarP(&checkProgress, "progress", "p", false, "show a progress bar on standard error")
	checkCmd.Flags().IntVarP(&checkWorkers, "workers", "w", 0, "number of files hashed in parallel (0 = automatic)")
	checkCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}} <checksum-file> [flags]

Arguments:
  checksum-file   Path to the file with checksum lines, or - for standard input

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`)
}

func runCheck(cmd *cobra.Command, args []string) error {
	checksumPath := args[0]

	quiet := flagOr(cmd, "quiet", checkQuiet, cfg.Check.Quiet)
	strict := flagOr(cmd, "strict", checkStrict, cfg.Check.Strict)
	warn := flagOr(cmd, "warn", checkWarn, cfg.Check.Warn)
	workers := flagOr(cmd, "workers", checkWorkers, cfg.Check.Workers)

	disp := display.NewDisplay(display.NewFormatter(checkVerbose))
	disp.SetOutput(cmd.OutOrStdout())
	disp.SetQuiet(quiet || checkStatus)
	disp.SetProgressOutput(cmd.ErrOrStderr())
	disp.SetProgress(checkProgress && !checkStatus)

	if checkVerbose {
		disp.ShowMessage(fmt.Sprintf("verifying digests listed in %s", checksumPath))
	}

	start := time.Now()

	result, err := checksum.Verify(cmd.Context(), checksum.VerifyOptions{
		ChecksumPath: checksumPath,
		Strict:       strict,
		Workers:      workers,
		Display:      disp,
		Stdin:        cmd.InOrStdin(),
	})
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if !checkStatus {
		disp.ShowCheckEntries(result)
		disp.ShowCheckResult(result, warn, time.Since(start))
	}

	if !result.Passed() {
		return fmt.Errorf("verification failed: %d mismatched, %d unreadable", result.Failed, result.ReadErrors)
	}
	return nil
}
