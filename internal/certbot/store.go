package certbot

import (
	"os"
	"path/filepath"
	"sort"

	certerrors "github.com/ksyq12/certbot-runner/internal/errors"
)

// Cert represents one certificate lineage in the live store
type Cert struct {
	Domain   string
	CertPath string
	KeyPath  string
}

// Store is certbot's live directory, one subdirectory per lineage
type Store struct {
	Dir string
}

// NewStore creates a Store rooted at dir
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Exists reports whether the live directory is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Dir)
	return err == nil
}

// CertPaths returns the certificate paths for a lineage
func (s *Store) CertPaths(domain string) *Cert {
	return &Cert{
		Domain:   domain,
		CertPath: filepath.Join(s.Dir, domain, "fullchain.pem"),
		KeyPath:  filepath.Join(s.Dir, domain, "privkey.pem"),
	}
}

// Certs lists every lineage, sorted by name. Plain files such as certbot's
// README are skipped.
func (s *Store) Certs() ([]*Cert, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, certerrors.Filesystem(s.Dir, "failed to list certificate store", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(s.Dir, e.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	certs := make([]*Cert, 0, len(names))
	for _, name := range names {
		certs = append(certs, s.CertPaths(name))
	}
	return certs, nil
}
