package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	certerrors "github.com/ksyq12/certbot-runner/internal/errors"
)

// fakeToolkit hands out numbered DH parameters and writes a recognizable
// self-signed file.
type fakeToolkit struct {
	dhCalls     int
	signedPaths []string
	dhErr       error
}

func (f *fakeToolkit) DHParams(ctx context.Context, bits int) ([]byte, error) {
	if f.dhErr != nil {
		return nil, f.dhErr
	}
	f.dhCalls++
	return []byte(fmt.Sprintf("DH-%d-%d", bits, f.dhCalls)), nil
}

func (f *fakeToolkit) SelfSigned(ctx context.Context, path, cn string) error {
	f.signedPaths = append(f.signedPaths, path)
	return os.WriteFile(path, []byte("SELF-"+cn+"\n"), 0600)
}

type fixture struct {
	root    string
	live    string
	out     string
	touch   string
	toolkit *fakeToolkit
	opts    Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:    root,
		live:    filepath.Join(root, "live"),
		out:     filepath.Join(root, "out", "certs"),
		touch:   filepath.Join(root, "changed"),
		toolkit: &fakeToolkit{},
	}
	f.opts = Options{
		OutputDirectory: f.out,
		LiveDirectory:   f.live,
		TouchFile:       f.touch,
		LockFile:        filepath.Join(root, "runner.lock"),
		DHParamBits:     1024,
	}
	return f
}

func (f *fixture) addLineage(t *testing.T, domain string) {
	t.Helper()
	dir := filepath.Join(f.live, domain)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fullchain.pem"), []byte("CHAIN-"+domain), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "privkey.pem"), []byte("KEY-"+domain), 0600); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) pipeline() *Pipeline {
	return NewPipeline(f.opts, f.toolkit)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func pemFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".pem" {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestRun_NoStoreCreatesPlaceholder(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline().Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.PlaceholderCreated {
		t.Error("expected placeholder to be created")
	}
	if len(res.Written) != 0 {
		t.Errorf("expected no bundles, got %v", res.Written)
	}

	got := readFile(t, filepath.Join(f.out, "localhost.pem"))
	if got != "SELF-localhost\nDH-1024-1\n" {
		t.Errorf("unexpected placeholder content %q", got)
	}
}

func TestRun_ConcatenatesBundles(t *testing.T) {
	f := newFixture(t)
	f.addLineage(t, "example.com")
	f.addLineage(t, "www.example.com")
	if err := os.WriteFile(filepath.Join(f.live, "README"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := f.pipeline().Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Written) != 2 {
		t.Fatalf("expected 2 bundles, got %v", res.Written)
	}
	if res.PlaceholderCreated {
		t.Error("placeholder must not be created when bundles exist")
	}

	got := readFile(t, filepath.Join(f.out, "example.com.pem"))
	if got != "CHAIN-example.com\nKEY-example.com\nDH-1024-1\n" {
		t.Errorf("unexpected bundle %q", got)
	}
	got = readFile(t, filepath.Join(f.out, "www.example.com.pem"))
	if got != "CHAIN-www.example.com\nKEY-www.example.com\nDH-1024-2\n" {
		t.Errorf("unexpected bundle %q", got)
	}

	info, err := os.Stat(filepath.Join(f.out, "example.com.pem"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != BundlePerm {
		t.Errorf("bundle mode = %v, want %v", info.Mode().Perm(), BundlePerm)
	}

	leftovers, _ := filepath.Glob(filepath.Join(f.out, ".*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestRun_RegeneratesDHEveryRun(t *testing.T) {
	f := newFixture(t)
	f.addLineage(t, "example.com")
	p := f.pipeline()
	path := filepath.Join(f.out, "example.com.pem")

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := readFile(t, path)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := readFile(t, path)

	if first == second {
		t.Error("bundle should change between runs")
	}
	if !strings.HasPrefix(second, "CHAIN-example.com\nKEY-example.com\n") {
		t.Errorf("bundle should be rewritten, not appended: %q", second)
	}
	if f.toolkit.dhCalls != 2 {
		t.Errorf("expected 2 DH generations, got %d", f.toolkit.dhCalls)
	}
}

func TestRun_PlaceholderLifecycle(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline()
	ctx := context.Background()

	// No certificates yet.
	if _, err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got := pemFiles(t, f.out); len(got) != 1 || got[0] != "localhost.pem" {
		t.Fatalf("expected only the placeholder, got %v", got)
	}

	// A second run keeps the single placeholder and does not regenerate it.
	res, err := p.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.PlaceholderCreated || res.PlaceholderRemoved {
		t.Errorf("placeholder should be left alone: %+v", res)
	}
	if len(f.toolkit.signedPaths) != 1 {
		t.Errorf("expected one self-signed generation, got %d", len(f.toolkit.signedPaths))
	}

	// A real certificate appears.
	f.addLineage(t, "example.com")
	res, err = p.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.PlaceholderRemoved {
		t.Error("expected placeholder removal")
	}
	if got := pemFiles(t, f.out); len(got) != 1 || got[0] != "example.com.pem" {
		t.Errorf("expected only the real bundle, got %v", got)
	}
}

func TestRun_OutputDirectoryWithPatternCharacters(t *testing.T) {
	f := newFixture(t)
	f.out = filepath.Join(f.root, "certs[a]")
	f.opts.OutputDirectory = f.out
	p := f.pipeline()
	ctx := context.Background()

	if _, err := p.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	f.addLineage(t, "example.com")
	res, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.PlaceholderCreated || !res.PlaceholderRemoved {
		t.Errorf("placeholder not tracked in %s: %+v", f.out, res)
	}
	if got := pemFiles(t, f.out); len(got) != 1 || got[0] != "example.com.pem" {
		t.Errorf("expected only the real bundle, got %v", got)
	}
}

func TestRun_SingleForeignPemKeepsNoPlaceholder(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.out, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.out, "manual.pem"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := f.pipeline().Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.PlaceholderCreated {
		t.Error("placeholder must not be created next to an existing bundle")
	}
}

func TestRun_Touch(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline()

	base := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return base }
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(f.touch)
	if err != nil {
		t.Fatalf("touch file not created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("touch file should be empty, size %d", info.Size())
	}
	if !info.ModTime().Equal(base) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), base)
	}

	later := base.Add(24 * time.Hour)
	p.now = func() time.Time { return later }
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	info, _ = os.Stat(f.touch)
	if !info.ModTime().After(base) {
		t.Errorf("mtime did not increase: %v", info.ModTime())
	}
}

func TestRun_NoTouchFile(t *testing.T) {
	f := newFixture(t)
	f.opts.TouchFile = ""

	res, err := f.pipeline().Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Touched {
		t.Error("nothing should be touched")
	}
	if _, err := os.Stat(f.touch); !os.IsNotExist(err) {
		t.Error("touch file should not exist")
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("missing private key", func(t *testing.T) {
		f := newFixture(t)
		f.addLineage(t, "example.com")
		os.Remove(filepath.Join(f.live, "example.com", "privkey.pem"))

		_, err := f.pipeline().Run(context.Background())
		if !certerrors.Is(err, certerrors.ErrFilesystem) {
			t.Errorf("expected filesystem error, got %v", err)
		}
	})

	t.Run("DH generation fails", func(t *testing.T) {
		f := newFixture(t)
		f.addLineage(t, "example.com")
		f.toolkit.dhErr = errors.New("openssl missing")

		if _, err := f.pipeline().Run(context.Background()); err == nil {
			t.Error("expected error")
		}
		if _, err := os.Stat(filepath.Join(f.out, "example.com.pem")); !os.IsNotExist(err) {
			t.Error("no partial bundle should be published")
		}
	})

	t.Run("output is a file", func(t *testing.T) {
		f := newFixture(t)
		if err := os.MkdirAll(filepath.Dir(f.out), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(f.out, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := f.pipeline().Run(context.Background()); !certerrors.Is(err, certerrors.ErrFilesystem) {
			t.Errorf("expected filesystem error, got %v", err)
		}
	})
}

func TestRun_Lock(t *testing.T) {
	f := newFixture(t)

	held := flock.New(f.opts.LockFile)
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("failed to take lock: %v", err)
	}
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.pipeline().Run(ctx)
	if err == nil {
		t.Fatal("expected lock error while another run holds the lock")
	}
	if !certerrors.Is(err, certerrors.ErrLocked) {
		t.Errorf("expected lock error, got %v", err)
	}
	if _, statErr := os.Stat(f.out); !os.IsNotExist(statErr) {
		t.Error("nothing should be written without the lock")
	}
}
