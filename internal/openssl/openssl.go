// Package openssl wraps the openssl commands used to build proxy bundles:
// Diffie-Hellman parameter generation and a throwaway self-signed
// certificate for hosts that have no real one yet.
package openssl

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	certerrors "github.com/ksyq12/certbot-runner/internal/errors"
	"github.com/ksyq12/certbot-runner/internal/executor"
)

// Binary is the openssl executable name
const Binary = "openssl"

// Toolkit runs openssl through a Runner
type Toolkit struct {
	runner *executor.Runner
}

// NewToolkit creates a Toolkit
func NewToolkit(runner *executor.Runner) *Toolkit {
	return &Toolkit{runner: runner}
}

// IsInstalled checks if openssl is on PATH
func (t *Toolkit) IsInstalled() bool {
	_, err := t.runner.Executor().LookPath(Binary)
	return err == nil
}

// DHParams generates fresh DH parameters of the given size and returns
// them PEM encoded. Nothing is cached; every call runs openssl.
func (t *Toolkit) DHParams(ctx context.Context, bits int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "dhparam-")
	if err != nil {
		return nil, certerrors.Filesystem(os.TempDir(), "failed to create temp directory", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "dhparam.pem")
	t.runner.Run(ctx, "Generating DH parameters", Binary, "dhparam", "-out", path, strconv.Itoa(bits))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, certerrors.Wrap(certerrors.ErrCodeProcess, "openssl dhparam produced no output", err)
	}
	return data, nil
}

// SelfSigned writes a self-signed RSA certificate for cn with its
// unencrypted key to path, key first, both in the same file.
func (t *Toolkit) SelfSigned(ctx context.Context, path, cn string) error {
	t.runner.Run(ctx, "Generating "+cn+" certificate", Binary,
		"req", "-x509",
		"-newkey", "rsa:2048",
		"-nodes",
		"-keyout", path,
		"-out", path,
		"-subj", "/CN="+cn,
	)
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(path); err != nil {
		return certerrors.Wrap(certerrors.ErrCodeProcess, "openssl req produced no certificate", err)
	}
	return nil
}
