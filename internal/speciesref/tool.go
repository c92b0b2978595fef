package speciesref

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Pollen-lab/cellbouncer/config"
	"github.com/pkg/errors"
)

// names of the external tools, as searched for on $PATH
const (
	gffread     = "gffread"
	fastk       = "FastK"
	uniqueKmers = "get_unique_kmers"
	gunzip      = "gunzip"
)

// overrideKeys maps each tool to its key in config.ToolConfig.Overrides
var overrideKeys = map[string]string{
	gffread:     "gffread",
	fastk:       "fastk",
	uniqueKmers: "unique-kmers",
	gunzip:      "gunzip",
}

// Runner executes an external program to completion. stdout may be nil,
// in which case the program's output is discarded.
type Runner interface {
	Run(ctx context.Context, path string, args []string, stdout io.Writer) error
}

// execRunner runs programs as child processes.
type execRunner struct {
	// upper bound on each process, zero for none
	timeout time.Duration
}

// Run starts the program and waits on it. Its stderr is kept for the error
// message if it exits non-zero.
func (r execRunner) Run(ctx context.Context, path string, args []string, stdout io.Writer) error {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil:
		return &Error{Kind: KindCanceled, Path: path, Err: ctx.Err()}
	case runCtx.Err() == context.DeadlineExceeded:
		return &Error{Kind: KindTimeout, Path: path, Err: errors.Errorf("still running after %s", r.timeout)}
	case errors.Is(err, exec.ErrNotFound) || os.IsNotExist(err):
		return &Error{Kind: KindToolMissing, Path: path, Err: err}
	}

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		err = errors.Errorf("%v: %s", err, msg)
	}
	return &Error{Kind: KindToolFailed, Path: path, Err: errors.Wrapf(err, "%s %s", filepath.Base(path), strings.Join(args, " "))}
}

// Toolbox resolves and runs the external tools of the pipeline.
type Toolbox struct {
	runner Runner

	// explicit tool paths, keyed by tool name
	overrides map[string]string

	// $PATH lookup, exec.LookPath outside of tests
	lookPath func(string) (string, error)

	// path to the running binary, os.Executable outside of tests
	executable func() (string, error)

	// step logger
	log *log.Logger
}

// NewToolbox returns a Toolbox that runs tools as child processes with
// the overrides and timeout in conf.
func NewToolbox(conf *config.Config) *Toolbox {
	overrides := make(map[string]string)
	set := conf.Tools.Overrides()
	for tool, key := range overrideKeys {
		if path, ok := set[key]; ok {
			overrides[tool] = path
		}
	}

	return &Toolbox{
		runner:     execRunner{timeout: conf.Timeout},
		overrides:  overrides,
		lookPath:   exec.LookPath,
		executable: os.Executable,
		log:        stderr,
	}
}

// SetLogger changes where stage steps are logged.
func (tb *Toolbox) SetLogger(l *log.Logger) {
	tb.log = l
}

// resolve returns the path of a tool: its override if there is one, else
// the first match on $PATH.
func (tb *Toolbox) resolve(tool string) (string, error) {
	if path, ok := tb.overrides[tool]; ok {
		return path, nil
	}

	path, err := tb.lookPath(tool)
	if err != nil {
		return "", &Error{
			Kind: KindToolMissing,
			Path: tool,
			Err:  errors.Errorf("not installed or not available in $PATH (set --%s)", overrideKeys[tool]),
		}
	}
	return path, nil
}

// resolveBeside is resolve with a check, before $PATH, for the tool in
// the directory of the running binary. get_unique_kmers is built and
// installed alongside this tool rather than on $PATH.
func (tb *Toolbox) resolveBeside(tool string) (string, error) {
	if path, ok := tb.overrides[tool]; ok {
		return path, nil
	}

	if self, err := tb.executable(); err == nil {
		beside := filepath.Join(filepath.Dir(self), tool)
		if info, err := os.Stat(beside); err == nil && !info.IsDir() {
			return beside, nil
		}
	}

	return tb.resolve(tool)
}
