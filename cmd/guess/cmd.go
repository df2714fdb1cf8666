package guess

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wordle-sleuth/firstguess/cmd/config"
	"github.com/wordle-sleuth/firstguess/internal/thread"
)

type options struct {
	consumerKey    string
	consumerSecret string
	bearerToken    string
	excludes       []int
	apiURL         string
}

func NewGuessCommand(cfg *config.Config) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "guess <root-tweet-id>",
		Short: "Guesses the first word of the author of a twitter thread",
		Long: `Crawls the replies to a tweet, keeps the Wordle grids the tweet's own
author posted and works out the first guess they all start with.

The Twitter API only searches the last seven days of replies.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.consumerKey, "consumer-key", os.Getenv("TWITTER_CONSUMER_KEY"), "Twitter API consumer key, authorized for the v2 API")
	cmd.Flags().StringVar(&opts.consumerSecret, "consumer-secret", os.Getenv("TWITTER_CONSUMER_SECRET"), "Twitter API consumer secret, authorized for the v2 API")
	cmd.Flags().StringVar(&opts.bearerToken, "bearer-token", os.Getenv("TWITTER_BEARER_TOKEN"), "app-only bearer token, skips authentication")
	cmd.Flags().IntSliceVarP(&opts.excludes, "excludes", "e", []int{0}, "days to exclude")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", thread.DefaultAPIURL, "Twitter API root")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, opts options, rootID string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := cfg.Logger()
	httpClient := &http.Client{Timeout: 30 * time.Second}

	token := opts.bearerToken
	if token == "" {
		var err error
		token, err = thread.Authenticate(ctx, httpClient, opts.apiURL, opts.consumerKey, opts.consumerSecret)
		if err != nil {
			return err
		}
	}
	client, err := thread.NewClient(token,
		thread.WithAPIURL(opts.apiURL),
		thread.WithHTTPClient(httpClient),
		thread.WithClientLogger(log.WithField("component", "twitter")),
	)
	if err != nil {
		return err
	}

	dict, err := cfg.Dictionary(ctx)
	if err != nil {
		return err
	}

	src, err := thread.NewSource(client, rootID, dict,
		thread.WithExcludes(opts.excludes...),
		thread.WithSourceLogger(log.WithField("component", "thread")),
	)
	if err != nil {
		return err
	}
	return cfg.Report(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), dict, src)
}
