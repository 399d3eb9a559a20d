package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/devxbattle/internal/battlectl"
	"github.com/okian/devxbattle/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Replies are written to out.
func newRootCmd(out io.Writer) *cobra.Command {
	cfg := &battlectl.Config{}

	root := &cobra.Command{
		Use:   "battlectl",
		Short: "Drive a running DevX Battle server",
		Long: `battlectl sends battle, account and profile requests to a DevX Battle
server and prints the JSON reply. It exits non-zero on any non-2xx answer.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.BaseURL, "url", battlectl.DefaultBaseURL, "Base URL of the service")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", battlectl.DefaultTimeout, "HTTP request timeout")
	root.PersistentFlags().BoolVar(&cfg.Verbose, "verbose", false, "Log each request to stderr")

	run := func(cmd *cobra.Command, name string, call battlectl.Call) error {
		return battlectl.Run(cmd.Context(), cfg, out, name, call)
	}

	githubCmd := &cobra.Command{
		Use:   "github <user1> <user2>",
		Short: "Battle two GitHub profiles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "github", func(ctx context.Context, c *battlectl.Client) (battlectl.Response, error) {
				return c.GitHubBattle(ctx, args[0], args[1])
			})
		},
	}

	var user1, user2 string
	nftCmd := &cobra.Command{
		Use:   "nft <uri1> <uri2>",
		Short: "Battle two NFTs by metadata URI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "nft", func(ctx context.Context, c *battlectl.Client) (battlectl.Response, error) {
				return c.NFTBattle(ctx, args[0], args[1], user1, user2)
			})
		},
	}
	nftCmd.Flags().StringVar(&user1, "user1", "", "Display name for the first NFT")
	nftCmd.Flags().StringVar(&user2, "user2", "", "Display name for the second NFT")

	authCmd := &cobra.Command{
		Use:   "auth <username> <wallet>",
		Short: "Authenticate a wallet, registering it on first use",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "auth", func(ctx context.Context, c *battlectl.Client) (battlectl.Response, error) {
				return c.Auth(ctx, args[0], args[1])
			})
		},
	}

	profileCmd := &cobra.Command{
		Use:   "profile <username>",
		Short: "Show the normalized GitHub profile used in battles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "profile", func(ctx context.Context, c *battlectl.Client) (battlectl.Response, error) {
				return c.Profile(ctx, args[0])
			})
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "health", func(ctx context.Context, c *battlectl.Client) (battlectl.Response, error) {
				return c.Health(ctx)
			})
		},
	}

	root.AddCommand(githubCmd, nftCmd, authCmd, profileCmd, healthCmd)
	return root
}
