package bundle

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/ksyq12/certbot-runner/internal/certbot"
	certerrors "github.com/ksyq12/certbot-runner/internal/errors"
	"github.com/ksyq12/certbot-runner/internal/logger"
)

// PlaceholderName is the common name of the stand-in certificate, and the
// stem of its file in the output directory.
const PlaceholderName = "localhost"

// BundlePerm is the mode of combined files; they contain private keys.
const BundlePerm os.FileMode = 0640

const lockRetryDelay = 500 * time.Millisecond

// Toolkit produces the openssl material appended to bundles
type Toolkit interface {
	DHParams(ctx context.Context, bits int) ([]byte, error)
	SelfSigned(ctx context.Context, path, cn string) error
}

// Options configures a Pipeline
type Options struct {
	OutputDirectory string
	LiveDirectory   string
	TouchFile       string
	LockFile        string
	DHParamBits     int
}

// Result reports what a pipeline run changed
type Result struct {
	Written            []string
	PlaceholderCreated bool
	PlaceholderRemoved bool
	Touched            bool
}

// Pipeline publishes certbot lineages as single-file bundles
type Pipeline struct {
	opts    Options
	store   *certbot.Store
	toolkit Toolkit
	log     *logger.Logger
	now     func() time.Time
}

// NewPipeline creates a Pipeline
func NewPipeline(opts Options, toolkit Toolkit) *Pipeline {
	return &Pipeline{
		opts:    opts,
		store:   certbot.NewStore(opts.LiveDirectory),
		toolkit: toolkit,
		log:     logger.Named("bundle"),
		now:     time.Now,
	}
}

// PlaceholderPath returns where the stand-in certificate lives
func (p *Pipeline) PlaceholderPath() string {
	return filepath.Join(p.opts.OutputDirectory, PlaceholderName+".pem")
}

// Run regenerates every bundle, maintains the placeholder and touches the
// touch-file. Any filesystem error aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.opts.LockFile != "" {
		unlock, err := p.lock(ctx)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	if err := os.MkdirAll(p.opts.OutputDirectory, 0755); err != nil {
		return nil, certerrors.Filesystem(p.opts.OutputDirectory, "failed to create output directory", err)
	}

	res := &Result{}

	if p.store.Exists() {
		certs, err := p.store.Certs()
		if err != nil {
			return nil, err
		}
		for _, cert := range certs {
			path, err := p.writeBundle(ctx, cert)
			if err != nil {
				return nil, err
			}
			res.Written = append(res.Written, path)
		}
	} else {
		p.log.Debug("Certificate store %s absent, nothing to publish", p.opts.LiveDirectory)
	}

	created, removed, err := p.syncPlaceholder(ctx)
	if err != nil {
		return nil, err
	}
	res.PlaceholderCreated = created
	res.PlaceholderRemoved = removed

	if p.opts.TouchFile != "" {
		if err := p.touch(); err != nil {
			return nil, err
		}
		res.Touched = true
	}

	p.log.InfoFields("Bundles published", logger.Fields{
		"bundles":             len(res.Written),
		"placeholder_created": res.PlaceholderCreated,
		"placeholder_removed": res.PlaceholderRemoved,
	})
	return res, nil
}

func (p *Pipeline) lock(ctx context.Context) (func(), error) {
	fl := flock.New(p.opts.LockFile)
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, certerrors.Wrap(certerrors.ErrCodeLock, "failed to lock "+p.opts.LockFile, err)
	}
	if !locked {
		return nil, certerrors.ErrLocked
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			p.log.Warn("Failed to release %s: %v", p.opts.LockFile, err)
		}
	}, nil
}

// writeBundle writes chain, key and fresh DH parameters to <domain>.pem
// through a temporary file so readers never see a partial bundle.
func (p *Pipeline) writeBundle(ctx context.Context, cert *certbot.Cert) (string, error) {
	var buf bytes.Buffer
	for _, src := range []string{cert.CertPath, cert.KeyPath} {
		data, err := os.ReadFile(src)
		if err != nil {
			return "", certerrors.Filesystem(src, "failed to read certificate material", err)
		}
		buf.Write(data)
		buf.WriteString("\n")
	}

	dh, err := p.toolkit.DHParams(ctx, p.opts.DHParamBits)
	if err != nil {
		return "", err
	}
	buf.Write(dh)
	buf.WriteString("\n")

	path := filepath.Join(p.opts.OutputDirectory, cert.Domain+".pem")
	tmpPath := filepath.Join(p.opts.OutputDirectory, "."+cert.Domain+".pem.tmp")
	if err := os.WriteFile(tmpPath, buf.Bytes(), BundlePerm); err != nil {
		return "", certerrors.Filesystem(tmpPath, "failed to write bundle", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", certerrors.Filesystem(path, "failed to replace bundle", err)
	}

	p.log.DebugFields("Bundle written", logger.Fields{"domain": cert.Domain, "bytes": buf.Len()})
	return path, nil
}

// syncPlaceholder creates the placeholder when the output directory holds
// no bundle at all and removes it once real bundles sit beside it.
func (p *Pipeline) syncPlaceholder(ctx context.Context) (created, removed bool, err error) {
	pems, err := p.listBundles()
	if err != nil {
		return false, false, err
	}
	path := p.PlaceholderPath()

	switch {
	case len(pems) == 0:
		if err := p.toolkit.SelfSigned(ctx, path, PlaceholderName); err != nil {
			return false, false, err
		}
		if err := p.appendDHParams(ctx, path); err != nil {
			return false, false, err
		}
		p.log.Info("No certificates yet, published placeholder %s", path)
		return true, false, nil

	case len(pems) > 1:
		if _, err := os.Stat(path); err != nil {
			return false, false, nil
		}
		if err := os.Remove(path); err != nil {
			return false, false, certerrors.Filesystem(path, "failed to remove placeholder", err)
		}
		p.log.Info("Removed placeholder %s", path)
		return false, true, nil
	}
	return false, false, nil
}

// listBundles returns the names of *.pem files in the output directory.
// Only base names are matched, so the directory path is taken literally.
func (p *Pipeline) listBundles() ([]string, error) {
	entries, err := os.ReadDir(p.opts.OutputDirectory)
	if err != nil {
		return nil, certerrors.Filesystem(p.opts.OutputDirectory, "failed to list bundles", err)
	}

	var names []string
	for _, e := range entries {
		if ok, _ := filepath.Match("*.pem", e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (p *Pipeline) appendDHParams(ctx context.Context, path string) error {
	dh, err := p.toolkit.DHParams(ctx, p.opts.DHParamBits)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return certerrors.Filesystem(path, "failed to open for append", err)
	}
	defer f.Close()

	if _, err := f.Write(append(dh, '\n')); err != nil {
		return certerrors.Filesystem(path, "failed to append DH parameters", err)
	}
	return nil
}

// touch creates the touch-file if needed and sets its mtime to now
func (p *Pipeline) touch() error {
	path := p.opts.TouchFile
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return certerrors.Filesystem(path, "failed to create touch file", err)
	}
	f.Close()

	now := p.now()
	if err := os.Chtimes(path, now, now); err != nil {
		return certerrors.Filesystem(path, "failed to touch", err)
	}
	return nil
}
