package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ksyq12/certbot-runner/internal/logger"
	"github.com/ksyq12/certbot-runner/internal/output"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	version = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "certbot-runner [post-hook]",
	Short: "Certbot container entrypoint for reverse proxies",
	Long: `certbot-runner requests Let's Encrypt certificates with certbot, renews
them daily and publishes one PEM bundle per domain (chain, key and DH
parameters) for proxies such as HAProxy.

Without arguments it requests certificates for CERTBOT_DOMAINS, publishes
bundles and then renews every day at CERTBOT_RENEW_AT until stopped.

With any single argument it only publishes bundles and exits. certbot
invokes it this way after a renewal.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command until it finishes or SIGINT/SIGTERM arrives
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return err
	}
	logger.Init(verbose || cfg.Verbose)
	logger.Debug("certbot-runner %s starting", version)

	a, err := newApp(cfg, deps)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) > 0 {
		return a.postProcess(ctx)
	}

	err = a.daemon(ctx)
	if errors.Is(err, context.Canceled) {
		output.Info("Shutting down")
		return nil
	}
	return err
}
