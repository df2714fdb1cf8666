package root

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/wordle-sleuth/firstguess/cmd/config"
	"github.com/wordle-sleuth/firstguess/cmd/guess"
	"github.com/wordle-sleuth/firstguess/cmd/serve"
	"github.com/wordle-sleuth/firstguess/cmd/solve"
)

func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}
	rootCmd := &cobra.Command{
		Use:   "firstguess",
		Short: "Firstguess works out the first Wordle guess someone always plays",
		Long: `Firstguess reads the Wordle share grids one author posted, pairs each
with the answer of its day and narrows the dictionary down to the first
guesses that produce every first row.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
	}
	cfg.AddFlags(rootCmd.PersistentFlags())

	// add sub-commands
	rootCmd.AddCommand(guess.NewGuessCommand(cfg))
	rootCmd.AddCommand(solve.NewSolveCommand(cfg))
	rootCmd.AddCommand(serve.NewServeCommand(cfg))

	return rootCmd
}

// ExitCode maps the error a command returned to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrImpossible):
		return 2
	}
	return 1
}
