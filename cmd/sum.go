package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobrr/shabrr/internal/checksum"
	"github.com/autobrr/shabrr/internal/display"
	"github.com/autobrr/shabrr/internal/hasher"
)

// sumOptions encapsulates all command-line flag values for the sum command
type sumOptions struct {
	workers  int
	strings  bool
	tag      bool
	binary   bool
	words    bool
	zero     bool
	progress bool
	verbose  bool
	quiet    bool
}

var sumOpts sumOptions

var sumCmd = &cobra.Command{
	Use:   "sum [file...]",
	Short: "Print SHA1 digests",
	Long: `Print the SHA1 digest of each file, one line per file, in the format
sha1sum uses. With no file, or when file is -, read standard input.
With --string the arguments themselves are digested instead of files.

The output can be fed back to "shabrr check" or "sha1sum -c".`,
	RunE:                       runSum,
	DisableFlagsInUseLine:      true,
	SuggestionsMinimumDistance: 1,
	SilenceUsage:               true,
}

func init() {
	sumCmd.Flags().SortFlags = false
	sumCmd.Flags().BoolP("help", "h", false, "help for sum")
	if err := sumCmd.Flags().MarkHidden("help"); err != nil {
		// This is initialization code, so we should panic
		panic(fmt.Errorf("failed to mark help flag as hidden: %w", err))
	}

	sumCmd.Flags().BoolVarP(&sumOpts.strings, "string", "s", false, "digest the arguments as strings")
	sumCmd.Flags().BoolVar(&sumOpts.tag, "tag", false, "create a BSD-style checksum")
	sumCmd.Flags().BoolVarP(&sumOpts.binary, "binary", "b", false, "mark files as binary (' *' separator)")
	sumCmd.Flags().BoolVar(&sumOpts.words, "words", false, "print the five 32-bit state words instead of hex")
	sumCmd.Flags().BoolVarP(&sumOpts.zero, "zero", "z", false, "end each output line with NUL, not newline")
	sumCmd.Flags().IntVarP(&sumOpts.workers, "workers", "w", 0, "number of files hashed in parallel (0 = automatic)")
	sumCmd.Flags().BoolVarP(&sumOpts.progress, "progress", "p", false, "show a progress bar on standard error")
	sumCmd.Flags().BoolVarP(&sumOpts.verbose, "verbose", "v", false, "list files and a summary on standard error")
	sumCmd.Flags().BoolVar(&sumOpts.quiet, "quiet", false, "print digests only, no warnings")

	sumCmd.Flags().String("cpuprofile", "", "write cpu profile to file (development flag)")

	sumCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}} [file...] [flags]
  {{.CommandPath}} --string <text>... [flags]

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`)
}

func runSum(cmd *cobra.Command, args []string) error {
	if cpuprofile, _ := cmd.Flags().GetString("cpuprofile"); cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	// command line flags override the config file
	opts := sumOpts
	opts.workers = flagOr(cmd, "workers", sumOpts.workers, cfg.Sum.Workers)
	opts.tag = flagOr(cmd, "tag", sumOpts.tag, cfg.Sum.Tag)
	opts.binary = flagOr(cmd, "binary", sumOpts.binary, cfg.Sum.Binary)
	opts.progress = flagOr(cmd, "progress", sumOpts.progress, cfg.Sum.Progress)
	opts.verbose = flagOr(cmd, "verbose", sumOpts.verbose, cfg.Sum.Verbose)

	jobs, err := sumJobs(args, opts.strings)
	if err != nil {
		return err
	}

	disp := display.NewDisplay(display.NewFormatter(opts.verbose))
	disp.SetOutput(cmd.ErrOrStderr())
	disp.SetQuiet(opts.quiet)
	disp.SetProgressOutput(cmd.ErrOrStderr())
	disp.SetProgress(opts.progress)

	if opts.verbose && !opts.strings {
		disp.ShowFiles(fileEntries(jobs))
	}

	start := time.Now()
	h := hasher.New(jobs, disp)
	h.SetStdin(cmd.InOrStdin())
	results, err := h.Run(cmd.Context(), opts.workers)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			if opts.quiet {
				continue
			}
			if hasher.IsNotExist(r) {
				disp.ShowError(fmt.Sprintf("%s: No such file or directory", r.Job.Name))
			} else {
				disp.ShowError(fmt.Sprintf("%s: %v", r.Job.Name, r.Err))
			}
			continue
		}
		if err := writeSum(out, r, opts); err != nil {
			return err
		}
	}

	if opts.verbose {
		disp.ShowSumSummary(results, time.Since(start))
	}

	if hasher.Failed(results) {
		return fmt.Errorf("could not hash every input")
	}
	return nil
}

func sumJobs(args []string, literal bool) ([]hasher.Job, error) {
	if literal {
		if len(args) == 0 {
			return nil, fmt.Errorf("--string requires at least one argument")
		}
		jobs := make([]hasher.Job, len(args))
		for i, s := range args {
			jobs[i] = hasher.Job{Name: fmt.Sprintf("%q", s), Data: []byte(s)}
		}
		return jobs, nil
	}

	if len(args) == 0 {
		args = []string{hasher.Stdin}
	}
	jobs := make([]hasher.Job, len(args))
	for i, path := range args {
		jobs[i] = hasher.Job{Name: path, Path: path}
	}
	return jobs, nil
}

func fileEntries(jobs []hasher.Job) []display.FileEntry {
	files := make([]display.FileEntry, 0, len(jobs))
	for _, j := range jobs {
		if j.Path == hasher.Stdin {
			continue
		}
		var size int64
		if fi, err := os.Stat(j.Path); err == nil {
			size = fi.Size()
		}
		files = append(files, display.FileEntry{Path: j.Path, Size: size})
	}
	return files
}

func writeSum(w io.Writer, r hasher.Result, opts sumOptions) error {
	end := "\n"
	if opts.zero {
		end = "\x00"
	}

	var line string
	if opts.words {
		ws := r.Digest.Words()
		line = fmt.Sprintf("%08x %08x %08x %08x %08x  %s", ws[0], ws[1], ws[2], ws[3], ws[4], r.Job.Name)
	} else {
		style := checksum.GNU
		if opts.tag {
			style = checksum.BSD
		}
		line = checksum.FormatLine(r.Digest, r.Job.Name, style, opts.binary)
	}

	if _, err := io.WriteString(w, line+end); err != nil {
		return fmt.Errorf("could not write digest: %w", err)
	}
	return nil
}
