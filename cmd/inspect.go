package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobrr/shabrr/internal/display"
	"github.com/autobrr/shabrr/internal/hasher"
	"github.com/autobrr/shabrr/internal/sha1"
)

// inspectOptions encapsulates command-line flag values for the inspect command
type inspectOptions struct {
	str          string
	rounds       bool
	block        int
	outputFormat string
}

var inspectOpts = inspectOptions{block: -1}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show how a SHA1 digest is computed",
	Long: `Inspect walks a message through SHA1 step by step: how it is padded,
the state before and after each 64-byte block, and optionally the
message schedule and the 80 rounds of one block.

The message is read from file, from --string, or from standard input.`,
	Args:                       cobra.MaximumNArgs(1),
	RunE:                       runInspect,
	DisableFlagsInUseLine:      true,
	SuggestionsMinimumDistance: 1,
	SilenceUsage:               true,
}

func init() {
	inspectCmd.Flags().SortFlags = false
	inspectCmd.Flags().StringVarP(&inspectOpts.str, "string", "s", "", "inspect this text instead of a file")
	inspectCmd.Flags().BoolVar(&inspectOpts.rounds, "rounds", false, "show the registers after every round of the selected block")
	inspectCmd.Flags().IntVar(&inspectOpts.block, "block", -1, "show the schedule (and rounds) of this block")
	inspectCmd.Flags().StringVarP(&inspectOpts.outputFormat, "output-format", "f", "text", "output format ('text' or 'json')")
	inspectCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}} [file] [flags]

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`)
}

// inspection is everything inspect reports about one message.
type inspection struct {
	Padding display.PaddingInfo  `json:"padding"`
	Blocks  []display.BlockState `json:"blocks"`
	Detail  *blockDetail         `json:"detail,omitempty"`
	Digest  string               `json:"digest"`

	digest sha1.Digest
}

// blockDetail is the schedule, and optionally the rounds, of one block.
type blockDetail struct {
	Index    int           `json:"index"`
	Schedule sha1.Schedule `json:"schedule"`
	Rounds   []sha1.State  `json:"rounds,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	opts := inspectOpts
	opts.rounds = flagOr(cmd, "rounds", inspectOpts.rounds, cfg.Inspect.Rounds)
	opts.block = flagOr(cmd, "block", inspectOpts.block, cfg.Inspect.ScheduleBlock)
	opts.outputFormat = strings.ToLower(flagOr(cmd, "output-format", inspectOpts.outputFormat, cfg.Inspect.OutputFormat))
	if opts.outputFormat != "text" && opts.outputFormat != "json" {
		return fmt.Errorf("invalid output format %q: must be text or json", opts.outputFormat)
	}
	if opts.rounds && opts.block < 0 {
		opts.block = 0
	}

	message, err := inspectInput(cmd, args, opts)
	if err != nil {
		return err
	}

	res, err := inspectMessage(message, opts.block, opts.rounds)
	if err != nil {
		return err
	}

	if opts.outputFormat == "json" {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("could not encode inspection: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	disp := display.NewDisplay(display.NewFormatter(false))
	disp.SetOutput(cmd.OutOrStdout())
	disp.ShowPadding(res.Padding)
	disp.ShowBlockStates(res.Blocks)
	if d := res.Detail; d != nil {
		disp.ShowSchedule(d.Index, &d.Schedule)
		if d.Rounds != nil {
			disp.ShowRounds(d.Index, d.Rounds)
		}
	}
	disp.ShowDigest(res.digest)
	return nil
}

func inspectInput(cmd *cobra.Command, args []string, opts inspectOptions) ([]byte, error) {
	if cmd.Flags().Changed("string") {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot inspect both --string and a file")
		}
		return []byte(opts.str), nil
	}

	if len(args) == 0 || args[0] == hasher.Stdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("error reading standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

// inspectMessage runs the pipeline stage by stage, recording the schedule
// and rounds of block when block is in range.
func inspectMessage(message []byte, block int, rounds bool) (*inspection, error) {
	bitLen, err := sha1.BitLength(len(message))
	if err != nil {
		return nil, err
	}
	padded, err := sha1.Pad(message)
	if err != nil {
		return nil, err
	}

	res := &inspection{
		Padding: display.PaddingInfo{
			MessageLen: len(message),
			BitLen:     bitLen,
			ZeroBytes:  len(padded) - len(message) - 1 - 8,
			PaddedLen:  len(padded),
			Blocks:     len(padded) / sha1.BlockSize,
		},
		Blocks: make([]display.BlockState, 0, len(padded)/sha1.BlockSize),
	}
	if block >= res.Padding.Blocks {
		return nil, fmt.Errorf("block %d out of range: message has %d block(s)", block, res.Padding.Blocks)
	}

	state := sha1.Initial()
	i := 0
	for w := range sha1.Blocks(padded) {
		var trace func(int, sha1.State)
		if i == block {
			d := &blockDetail{Index: i, Schedule: w}
			if rounds {
				d.Rounds = make([]sha1.State, 0, sha1.ScheduleLen)
				trace = func(_ int, r sha1.State) {
					d.Rounds = append(d.Rounds, r)
				}
			}
			res.Detail = d
		}

		next := sha1.Trace(&w, state, trace)
		res.Blocks = append(res.Blocks, display.BlockState{Index: i, In: state, Out: next})
		state = next
		i++
	}

	res.digest = state.Digest()
	res.Digest = res.digest.String()
	return res, nil
}
