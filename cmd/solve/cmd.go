package solve

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wordle-sleuth/firstguess/cmd/config"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/input"
)

func NewSolveCommand(cfg *config.Config) *cobra.Command {
	var excludes []int
	cmd := &cobra.Command{
		Use:   "solve <path|->",
		Short: "Solves observations read from a file",
		Long: `Solves observations read from a file, or from stdin when the path is -.
For instance:
# day and first row
215 ⬛⬛⬛⬛⬛
216 ⬛⬛🟩⬛⬛
# answer and first row
knoll ⬛🟨⬛⬛⬛
# pasted share text, only the first row counts
Wordle 221 3/6

🟨⬛⬛⬛⬛
🟩🟩⬛⬛⬛
🟩🟩🟩🟩🟩
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return nil
			}
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("error opening observations file (%s): %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			dict, err := cfg.Dictionary(ctx)
			if err != nil {
				return err
			}
			observations, err := ParseObservations(in, dict, excludes...)
			if err != nil {
				return fmt.Errorf("error parsing observations (%s): %w", args[0], err)
			}
			for _, o := range observations {
				cfg.Logger().Info(o.String())
			}
			return cfg.Report(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), dict, input.Observations(observations))
		},
	}
	cmd.Flags().IntSliceVarP(&excludes, "excludes", "e", nil, "days to exclude")
	return cmd
}
