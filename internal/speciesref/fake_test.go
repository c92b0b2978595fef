package speciesref

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
)

// call is one invocation of a fake tool
type call struct {
	tool string
	args []string
}

// fakeRunner stands in for the external tools. Each tool writes the files
// the real one would, so the pipeline's bookkeeping can be checked on disk.
type fakeRunner struct {
	mu    sync.Mutex
	calls []call

	// fail makes a tool exit non-zero when the predicate matches its args
	fail map[string]func(args []string) bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{fail: make(map[string]func([]string) bool)}
}

func (f *fakeRunner) Run(ctx context.Context, path string, args []string, stdout io.Writer) error {
	tool := filepath.Base(path)

	f.mu.Lock()
	f.calls = append(f.calls, call{tool: tool, args: append([]string(nil), args...)})
	fail := f.fail[tool]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindCanceled, Path: path, Err: err}
	}

	var err error
	switch tool {
	case gunzip:
		err = fakeGunzip(args, stdout)
	case gffread:
		err = fakeGffread(args)
	case fastk:
		err = fakeFastK(args)
	case uniqueKmers:
		err = fakeUniqueKmers(args)
	}
	if err == nil && fail != nil && fail(args) {
		err = errors.New("exit status 1")
	}
	if err != nil {
		return &Error{Kind: KindToolFailed, Path: path, Err: err}
	}
	return nil
}

// callsTo returns the calls made to a tool, in order.
func (f *fakeRunner) callsTo(tool string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []call
	for _, c := range f.calls {
		if c.tool == tool {
			calls = append(calls, c)
		}
	}
	return calls
}

// gunzip -c <path>
func fakeGunzip(args []string, stdout io.Writer) error {
	in, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	_, err = io.Copy(stdout, zr)
	return err
}

// gffread -F -w <out> -g <fasta> <gtf>
func fakeGffread(args []string) error {
	for _, in := range []string{args[4], args[5]} {
		if gz, err := IsGzip(in); err != nil || gz {
			return errors.Errorf("gffread can't read %s", in)
		}
	}
	return os.WriteFile(args[2], []byte(">tx1\nACGTACGTACGT\n"), 0644)
}

// FastK -N<prefix> -k<k> -t1 <fasta>
func fakeFastK(args []string) error {
	if _, err := os.Stat(args[3]); err != nil {
		return err
	}

	prefix := strings.TrimPrefix(args[0], "-N")
	dir, base := filepath.Split(prefix)
	for _, name := range []string{
		prefix + ".ktab",
		prefix + ".hist",
		filepath.Join(dir, "."+base+".ktab.1"),
		filepath.Join(dir, "."+base+".ktab.2"),
	} {
		if err := os.WriteFile(name, []byte("table"), 0644); err != nil {
			return err
		}
	}
	return nil
}

// get_unique_kmers -N <num> -o <out> (-n <name> -k <table>)...
func fakeUniqueKmers(args []string) error {
	out := args[3]
	for i := 0; 4+4*i < len(args); i++ {
		table := args[4+4*i+3]
		if _, err := os.Stat(table); err != nil {
			return err
		}
		if err := os.WriteFile(fmt.Sprintf("%s.%d.kmers", out, i), []byte("ACGT\n"), 0644); err != nil {
			return err
		}
	}
	return nil
}

// newTestToolbox returns a Toolbox over r with the named tools on $PATH.
func newTestToolbox(r Runner, installed ...string) *Toolbox {
	onPath := make(map[string]bool)
	for _, tool := range installed {
		onPath[tool] = true
	}

	return &Toolbox{
		runner:    r,
		overrides: make(map[string]string),
		lookPath: func(tool string) (string, error) {
			if onPath[tool] {
				return "/usr/local/bin/" + tool, nil
			}
			return "", &exec.Error{Name: tool, Err: exec.ErrNotFound}
		},
		executable: func() (string, error) {
			return "", errors.New("no executable")
		},
		log: log.New(io.Discard, "", 0),
	}
}

// allTools are every external tool the pipeline may call
var allTools = []string{gunzip, gffread, fastk, uniqueKmers}

// writeFile writes contents to name in dir and returns its path.
func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeGzip writes gzipped contents to name in dir and returns its path.
func writeGzip(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// listDir returns the names of the files in dir, hidden ones included.
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
