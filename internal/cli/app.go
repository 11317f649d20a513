package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ksyq12/certbot-runner/internal/bundle"
	"github.com/ksyq12/certbot-runner/internal/certbot"
	"github.com/ksyq12/certbot-runner/internal/config"
	certerrors "github.com/ksyq12/certbot-runner/internal/errors"
	"github.com/ksyq12/certbot-runner/internal/executor"
	"github.com/ksyq12/certbot-runner/internal/logger"
	"github.com/ksyq12/certbot-runner/internal/openssl"
	"github.com/ksyq12/certbot-runner/internal/output"
	"github.com/ksyq12/certbot-runner/internal/scheduler"
)

// postHookArg is what certbot passes back to us after a renewal
const postHookArg = "post-hook"

// app wires the components for one invocation
type app struct {
	cfg      *config.Config
	certbot  *certbot.Client
	toolkit  *openssl.Toolkit
	pipeline *bundle.Pipeline
	postHook string

	// newScheduler is replaced in tests
	newScheduler func(hour, minute int, job scheduler.Job) runnable
}

type runnable interface {
	Run(ctx context.Context) error
}

func newApp(cfg *config.Config, d *Dependencies) (*app, error) {
	runner := executor.NewRunner(d.Executor)
	toolkit := openssl.NewToolkit(runner)

	postHook := cfg.PostHook
	if postHook == "" {
		self, err := d.SelfLocator.Executable()
		if err != nil {
			return nil, certerrors.Wrap(certerrors.ErrCodeInternal, "failed to locate own executable", err)
		}
		postHook = shellQuote(self) + " " + postHookArg
	}

	return &app{
		cfg:     cfg,
		certbot: certbot.NewClient(runner, cfg.ACMEServer, cfg.Email),
		toolkit: toolkit,
		pipeline: bundle.NewPipeline(bundle.Options{
			OutputDirectory: cfg.OutputDirectory,
			LiveDirectory:   cfg.LiveDirectory,
			TouchFile:       cfg.TouchFile,
			LockFile:        cfg.LockFile,
			DHParamBits:     cfg.DHParamBits,
		}, toolkit),
		postHook: postHook,
		newScheduler: func(hour, minute int, job scheduler.Job) runnable {
			return scheduler.New(hour, minute, job)
		},
	}, nil
}

// daemon requests certificates, publishes bundles and renews daily until
// ctx is cancelled.
func (a *app) daemon(ctx context.Context) error {
	if err := a.cfg.ValidateIssuance(); err != nil {
		return err
	}
	a.preflight()
	a.requestCertificates(ctx)

	if err := a.postProcess(ctx); err != nil {
		return err
	}

	hour, minute, err := a.cfg.RenewTime()
	if err != nil {
		return err
	}
	return a.newScheduler(hour, minute, a.renew).Run(ctx)
}

// requestCertificates asks certbot for every configured domain
func (a *app) requestCertificates(ctx context.Context) {
	if a.cfg.Disabled {
		output.Warn("Skipping official certificates because CERTBOT_DISABLED is 1")
		return
	}
	a.certbot.IssueAll(ctx, a.cfg.DomainList())
}

// renew is the scheduled job; certbot calls postHook when done
func (a *app) renew(ctx context.Context) {
	a.certbot.Renew(ctx, a.postHook)
}

// postProcess publishes bundles once
func (a *app) postProcess(ctx context.Context) error {
	res, err := a.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("post-processing failed: %w", err)
	}

	switch {
	case res.PlaceholderCreated:
		output.Warn("No certificates yet, serving placeholder %s", a.pipeline.PlaceholderPath())
	case res.PlaceholderRemoved:
		output.Success("Placeholder removed")
	}
	output.Success("Published %d bundle(s) to %s", len(res.Written), a.cfg.OutputDirectory)
	return nil
}

// preflight warns about missing tools without stopping; their absence
// shows up again as failed runs.
func (a *app) preflight() {
	checks := []struct {
		name      string
		installed bool
		needed    bool
	}{
		{certbot.Binary, a.certbot.IsInstalled(), !bool(a.cfg.Disabled)},
		{openssl.Binary, a.toolkit.IsInstalled(), true},
	}

	for _, c := range checks {
		if c.needed && !c.installed {
			output.Warn("%s not found in PATH", c.name)
			logger.WarnFields("Required tool missing", logger.Fields{"tool": c.name})
		}
	}
}

// shellQuote quotes s for the shell certbot runs hooks in
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
