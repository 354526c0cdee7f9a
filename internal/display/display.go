package display

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/markkurossi/tabulate"
	progressbar "github.com/schollz/progressbar/v3"

	"github.com/autobrr/shabrr/internal/bench"
	"github.com/autobrr/shabrr/internal/checksum"
	"github.com/autobrr/shabrr/internal/hasher"
	"github.com/autobrr/shabrr/internal/sha1"
)

type Display struct {
	formatter *Formatter
	bar       *progressbar.ProgressBar
	out       io.Writer
	barOut    io.Writer
	quiet     bool
	progress  bool
}

var _ hasher.Displayer = (*Display)(nil)

func NewDisplay(formatter *Formatter) *Display {
	return &Display{
		formatter: formatter,
		out:       os.Stdout,
		barOut:    os.Stderr,
	}
}

// SetOutput redirects everything but the progress bar.
func (d *Display) SetOutput(w io.Writer) {
	d.out = w
}

// SetProgressOutput redirects the progress bar, standard error by default.
func (d *Display) SetProgressOutput(w io.Writer) {
	d.barOut = w
}

func (d *Display) SetQuiet(quiet bool) {
	d.quiet = quiet
}

// SetProgress enables the progress bar.
func (d *Display) SetProgress(enabled bool) {
	d.progress = enabled
}

func (d *Display) ShowProgress(total int) {
	if d.quiet || !d.progress || total == 0 {
		return
	}
	d.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(d.barOut),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan][bold]Hashing files...[reset]"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (d *Display) UpdateProgress(completed int, hashrate float64) {
	if d.bar == nil {
		return
	}
	if err := d.bar.Set(completed); err != nil {
		log.Printf("failed to update progress bar: %v", err)
	}

	if hashrate > 0 {
		description := fmt.Sprintf("[cyan][bold]Hashing files...[reset] [%s/s]", humanize.IBytes(uint64(hashrate)))
		d.bar.Describe(description)
	}
}

func (d *Display) FinishProgress() {
	if d.bar == nil {
		return
	}
	if err := d.bar.Finish(); err != nil {
		log.Printf("failed to finish progress bar: %v", err)
	}
	fmt.Fprintln(d.barOut)
	d.bar = nil
}

func (d *Display) ShowFiles(files []FileEntry) {
	if d.quiet {
		return
	}

	fmt.Fprintf(d.out, "\n%s\n", magenta("Files being hashed:"))
	for i, file := range files {
		prefix := "  ├─"
		if i == len(files)-1 {
			prefix = "  └─"
		}
		fmt.Fprintf(d.out, "%s %s (%s)\n",
			prefix,
			success(filepath.Base(file.Path)),
			label(d.formatter.FormatBytes(file.Size)))
	}
	fmt.Fprintln(d.out)
}

var (
	magenta    = color.New(color.FgMagenta).SprintFunc()
	yellow     = color.New(color.FgYellow).SprintFunc()
	success    = color.New(color.FgGreen).SprintFunc()
	label      = color.New(color.FgCyan).SprintFunc()
	highlight  = color.New(color.FgHiWhite).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

func (d *Display) ShowMessage(msg string) {
	if d.quiet {
		return
	}
	fmt.Fprintf(d.out, "%s %s\n", success("\nInfo:"), msg)
}

func (d *Display) ShowError(msg string) {
	fmt.Fprintln(d.out, errorColor(msg))
}

func (d *Display) ShowWarning(msg string) {
	fmt.Fprintf(d.out, "%s %s\n", yellow("Warning:"), msg)
}

// ShowSumSummary prints totals after hashing. Failed jobs are listed with
// their error.
func (d *Display) ShowSumSummary(results []hasher.Result, duration time.Duration) {
	if d.quiet {
		return
	}

	var ok, failed int
	var totalSize int64
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		ok++
		totalSize += r.Size
	}

	fmt.Fprintf(d.out, "\n%s\n", magenta("Summary:"))
	fmt.Fprintf(d.out, "  %-13s %d\n", label("Hashed:"), ok)
	if failed > 0 {
		fmt.Fprintf(d.out, "  %-13s %s\n", label("Failed:"), errorColor(failed))
	}
	fmt.Fprintf(d.out, "  %-13s %s\n", label("Total size:"), d.formatter.FormatBytes(totalSize))
	fmt.Fprintf(d.out, "  %-13s %s\n", label("Elapsed:"), d.formatter.FormatDuration(duration))
	if duration > 0 && totalSize > 0 {
		rate := float64(totalSize) / duration.Seconds()
		fmt.Fprintf(d.out, "  %-13s %s/s\n", label("Throughput:"), humanize.IBytes(uint64(rate)))
	}
}

// ShowCheckEntries prints one line per checked entry, like sha1sum -c.
// In quiet mode only failures are printed.
func (d *Display) ShowCheckEntries(res *checksum.VerificationResult) {
	for _, e := range res.Entries {
		switch e.Status {
		case checksum.StatusOK:
			if d.quiet {
				continue
			}
			fmt.Fprintf(d.out, "%s: %s\n", checksum.EscapeName(e.Entry.Name), success(e.Status))
		default:
			fmt.Fprintf(d.out, "%s: %s\n", checksum.EscapeName(e.Entry.Name), errorColor(e.Status))
			if d.formatter.verbose && e.Err != nil {
				fmt.Fprintf(d.out, "  %s\n", e.Err)
			}
		}
	}
}

// ShowCheckResult prints the warnings sha1sum prints after a check.
func (d *Display) ShowCheckResult(res *checksum.VerificationResult, warnMalformed bool, duration time.Duration) {
	if n := len(res.MalformedLines); n > 0 && (warnMalformed || !d.quiet) {
		d.ShowWarning(fmt.Sprintf("%d line(s) improperly formatted", n))
		if warnMalformed {
			for _, line := range res.MalformedLines {
				fmt.Fprintf(d.out, "  %s %d\n", label("line"), line)
			}
		}
	}
	if res.ReadErrors > 0 {
		d.ShowWarning(fmt.Sprintf("%d listed file(s) could not be read", res.ReadErrors))
	}
	if res.Failed > 0 {
		d.ShowWarning(fmt.Sprintf("%d computed checksum(s) did NOT match", res.Failed))
	}

	if d.quiet || !d.formatter.verbose {
		return
	}

	fmt.Fprintf(d.out, "\n%s\n", magenta("Verification results:"))
	fmt.Fprintf(d.out, "  %-13s %d\n", label("Entries:"), len(res.Entries))
	fmt.Fprintf(d.out, "  %-13s %s\n", label("OK:"), success(res.OK))
	fmt.Fprintf(d.out, "  %-13s %s\n", label("Failed:"), errorColor(res.Failed))
	fmt.Fprintf(d.out, "  %-13s %s\n", label("Unreadable:"), errorColor(res.ReadErrors))
	fmt.Fprintf(d.out, "  %-13s %s\n", label("Elapsed:"), d.formatter.FormatDuration(duration))
}

// ShowPadding prints how the message was padded and split.
func (d *Display) ShowPadding(info PaddingInfo) {
	fmt.Fprintf(d.out, "\n%s\n", magenta("Padding:"))
	fmt.Fprintf(d.out, "  %-15s %s (%d bytes)\n", label("Message:"), humanize.IBytes(uint64(info.MessageLen)), info.MessageLen)
	fmt.Fprintf(d.out, "  %-15s %d\n", label("Bit length:"), info.BitLen)
	fmt.Fprintf(d.out, "  %-15s 0x80 + %d zero byte(s) + 8 length bytes\n", label("Appended:"), info.ZeroBytes)
	fmt.Fprintf(d.out, "  %-15s %d bytes\n", label("Padded:"), info.PaddedLen)
	fmt.Fprintf(d.out, "  %-15s %d\n", label("Blocks:"), info.Blocks)
}

// ShowBlockStates prints the accumulator around every block.
func (d *Display) ShowBlockStates(states []BlockState) {
	fmt.Fprintf(d.out, "\n%s\n", magenta("Blocks:"))

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Block").SetAlign(tabulate.MR)
	tab.Header("").SetAlign(tabulate.ML)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		tab.Header(name).SetAlign(tabulate.ML)
	}

	for _, s := range states {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", s.Index))
		row.Column("in")
		stateColumns(row, s.In)

		row = tab.Row()
		row.Column("")
		row.Column("out").SetFormat(tabulate.FmtBold)
		stateColumns(row, s.Out)
	}
	tab.Print(d.out)
}

func stateColumns(row *tabulate.Row, s sha1.State) {
	for _, w := range s {
		row.Column(fmt.Sprintf("%08x", w))
	}
}

// ShowSchedule prints the 80 schedule words of one block, eight per row.
func (d *Display) ShowSchedule(block int, w *sha1.Schedule) {
	fmt.Fprintf(d.out, "\n%s\n", magenta(fmt.Sprintf("Schedule of block %d:", block)))

	const perRow = 8
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("W").SetAlign(tabulate.MR)
	for i := 0; i < perRow; i++ {
		tab.Header(fmt.Sprintf("+%d", i)).SetAlign(tabulate.ML)
	}
	for i := 0; i < sha1.ScheduleLen; i += perRow {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", i))
		for j := i; j < i+perRow; j++ {
			col := row.Column(fmt.Sprintf("%08x", w[j]))
			if j < 16 {
				// words read straight from the block
				col.SetFormat(tabulate.FmtBold)
			}
		}
	}
	tab.Print(d.out)
}

// ShowRounds prints the working registers after every round of a block.
func (d *Display) ShowRounds(block int, rounds []sha1.State) {
	fmt.Fprintf(d.out, "\n%s\n", magenta(fmt.Sprintf("Rounds of block %d:", block)))

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("t").SetAlign(tabulate.MR)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		tab.Header(name).SetAlign(tabulate.ML)
	}
	for i, s := range rounds {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", i))
		stateColumns(row, s)
	}
	tab.Print(d.out)
}

// ShowDigest prints the final digest and its five words.
func (d *Display) ShowDigest(digest sha1.Digest) {
	fmt.Fprintf(d.out, "\n%s\n", magenta("Digest:"))
	fmt.Fprintf(d.out, "  %-15s %s\n", label("Hex:"), highlight(digest.String()))
	w := digest.Words()
	fmt.Fprintf(d.out, "  %-15s %08x %08x %08x %08x %08x\n", label("Words:"), w[0], w[1], w[2], w[3], w[4])
}

// ShowBenchResults prints the CPU summary and a throughput table.
func (d *Display) ShowBenchResults(cpu bench.CPUInfo, results []bench.Result) {
	fmt.Fprintf(d.out, "\n%s\n", magenta("CPU:"))
	fmt.Fprintf(d.out, "  %-15s %s\n", label("Model:"), cpu.Brand)
	fmt.Fprintf(d.out, "  %-15s %s\n", label("Architecture:"), cpu.Arch)
	fmt.Fprintf(d.out, "  %-15s %d physical, %d logical\n", label("Cores:"), cpu.PhysicalCores, cpu.LogicalCores)
	hw := "no"
	if cpu.HardwareSHA1 {
		hw = "yes"
	}
	fmt.Fprintf(d.out, "  %-15s %s\n\n", label("SHA1 insns:"), hw)

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Implementation").SetAlign(tabulate.ML)
	tab.Header("Size").SetAlign(tabulate.MR)
	tab.Header("Iterations").SetAlign(tabulate.MR)
	tab.Header("Throughput").SetAlign(tabulate.MR)
	for _, r := range results {
		row := tab.Row()
		row.Column(string(r.Impl))
		row.Column(humanize.IBytes(uint64(r.Size)))
		row.Column(humanize.Comma(int64(r.Iterations)))
		row.Column(humanize.IBytes(uint64(r.Throughput())) + "/s")
	}
	tab.Print(d.out)
}

type Formatter struct {
	verbose bool
}

func NewFormatter(verbose bool) *Formatter {
	return &Formatter{verbose: verbose}
}

func (f *Formatter) FormatBytes(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

func (f *Formatter) FormatDuration(dur time.Duration) string {
	if dur < time.Second {
		return fmt.Sprintf("%dms", dur.Milliseconds())
	}
	return humanize.RelTime(time.Now().Add(-dur), time.Now(), "", "")
}
