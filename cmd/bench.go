package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/autobrr/shabrr/internal/bench"
	"github.com/autobrr/shabrr/internal/display"
)

var (
	benchSizes    []string
	benchDuration time.Duration
	benchProgress bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare the SHA1 pipeline against crypto/sha1",
	Long: `Hash buffers of several sizes with the step-by-step pipeline and with
the standard library, and print the throughput of each. Both must agree on
every digest before a size is timed.`,
	Args:                       cobra.NoArgs,
	RunE:                       runBench,
	DisableFlagsInUseLine:      true,
	SuggestionsMinimumDistance: 1,
	SilenceUsage:               true,
}

func init() {
	benchCmd.Flags().SortFlags = false
	benchCmd.Flags().StringSliceVar(&benchSizes, "sizes", nil, "input sizes to measure, e.g. 64,1KiB,1MiB")
	benchCmd.Flags().DurationVarP(&benchDuration, "duration", "d", 200*time.Millisecond, "minimum time spent per size and implementation")
	benchCmd.Flags().BoolVarP(&benchProgress, "progress", "p", true, "show a progress bar on standard error")
	benchCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}} [flags]

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`)
}

func runBench(cmd *cobra.Command, args []string) error {
	sizes, err := parseSizes(benchSizes)
	if err != nil {
		return err
	}

	opts := bench.Options{
		Sizes:       sizes,
		MinDuration: benchDuration,
	}

	if benchProgress {
		total := len(sizes)
		if total == 0 {
			total = len(bench.DefaultSizes)
		}
		bar := progressbar.NewOptions(total*2,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("[cyan][bold]Benchmarking...[reset]"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		opts.Progress = func(done, _ int) {
			_ = bar.Set(done)
		}
		defer func() { _ = bar.Finish() }()
	}

	results, err := bench.Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	disp := display.NewDisplay(display.NewFormatter(false))
	disp.SetOutput(cmd.OutOrStdout())
	disp.ShowBenchResults(bench.DetectCPU(), results)
	return nil
}

// parseSizes accepts plain byte counts and humanized sizes like 4KiB.
func parseSizes(raw []string) ([]int, error) {
	sizes := make([]int, 0, len(raw))
	for _, s := range raw {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", s, err)
		}
		if n > 1<<30 {
			return nil, fmt.Errorf("size %q is larger than 1GiB", s)
		}
		sizes = append(sizes, int(n))
	}
	return sizes, nil
}
