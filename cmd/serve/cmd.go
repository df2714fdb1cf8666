package serve

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wordle-sleuth/firstguess/cmd/config"
	"github.com/wordle-sleuth/firstguess/internal/server"
)

func NewServeCommand(cfg *config.Config) *cobra.Command {
	var addr string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves solves over HTTP",
		Long: `Serves GET /healthz and POST /solve. A solve request looks like:

{"observations":[{"grid":"🟨⬛⬛⬛⬛","day":221},{"grid":"⬛⬛⬛⬛⬛","answer":"robot"}],"excludes":[0]}
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dict, err := cfg.Dictionary(ctx)
			if err != nil {
				return err
			}
			so, err := cfg.Solver(dict, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			e, err := cfg.Explainer(dict)
			if err != nil {
				return err
			}
			s, err := server.New(so,
				server.WithExplainer(e),
				server.WithTimeout(timeout),
				server.WithLogger(cfg.Logger().WithField("component", "server")),
			)
			if err != nil {
				return err
			}
			return s.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per request timeout")
	return cmd
}
