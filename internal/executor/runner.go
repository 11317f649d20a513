package executor

import (
	"context"

	"github.com/ksyq12/certbot-runner/internal/logger"
	"github.com/ksyq12/certbot-runner/internal/output"
)

// Runner executes external tools with a framed console header and an
// exit code trailer. It never reports failure to the caller: outcomes are
// only visible on the console and in the log.
type Runner struct {
	exec CommandExecutor
	log  *logger.Logger
}

// NewRunner creates a Runner on top of exec
func NewRunner(exec CommandExecutor) *Runner {
	return &Runner{exec: exec, log: logger.Named("runner")}
}

// Executor returns the underlying command executor
func (r *Runner) Executor() CommandExecutor {
	return r.exec
}

// Run prints header, runs name with args and prints its exit code.
func (r *Runner) Run(ctx context.Context, header, name string, args ...string) {
	output.Banner(header)
	r.log.DebugFields("Starting process", logger.Fields{"name": name, "args": args})

	code, err := r.exec.Run(ctx, name, args...)
	if err != nil {
		r.log.ErrorFields("Process did not complete", logger.Fields{"name": name, "error": err})
	}
	if code != 0 {
		r.log.WarnFields(header+" failed", logger.Fields{"name": name, "exit_code": code})
	}

	output.ExitCode(name, code)
}
