// Package action adapts gtkup to the GitHub Actions runner: inputs, log
// groups, the GITHUB_PATH file and error annotations.
package action

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gtkup/envpath"
	"gtkup/logging"

	"github.com/sethvargo/go-githubactions"
)

// ErrNoPathFile is returned when the runner did not provide GITHUB_PATH
var ErrNoPathFile = errors.New("GITHUB_PATH is not set")

// Inputs holds the action inputs. Empty values mean the input was not given.
type Inputs struct {
	Arch   string
	GTKDir string
}

// Runner talks to the Actions runner through workflow commands and
// environment files
type Runner struct {
	gha    *githubactions.Action
	out    io.Writer
	getenv func(string) string

	// serializes group output of concurrent targets
	mu sync.Mutex
}

// New creates a Runner writing workflow commands to out and reading its
// environment through getenv
func New(out io.Writer, getenv func(string) string) *Runner {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Runner{
		gha:    githubactions.New(githubactions.WithWriter(out), githubactions.WithGetenv(getenv)),
		out:    out,
		getenv: getenv,
	}
}

// FromEnvironment creates a Runner for the current process
func FromEnvironment() *Runner {
	return New(os.Stdout, os.Getenv)
}

// IsActions reports whether the process runs inside a GitHub Actions job
func IsActions(getenv func(string) string) bool {
	return getenv("GITHUB_ACTIONS") == "true"
}

// Inputs reads the arch and gtk_dir inputs
func (r *Runner) Inputs() Inputs {
	return Inputs{
		Arch:   r.gha.GetInput("arch"),
		GTKDir: r.gha.GetInput("gtk_dir"),
	}
}

// Group opens a collapsible log group. Lines are buffered and written as one
// block on End, so groups of concurrent targets never interleave.
func (r *Runner) Group(title string) logging.Section {
	s := &section{runner: r}
	s.gha = githubactions.New(githubactions.WithWriter(&s.buf), githubactions.WithGetenv(r.getenv))
	s.gha.Group(title)
	return s
}

type section struct {
	runner *Runner
	gha    *githubactions.Action
	buf    bytes.Buffer
	once   sync.Once
}

func (s *section) Infof(format string, args ...any) {
	s.gha.Infof(format, args...)
}

func (s *section) End() {
	s.once.Do(func() {
		s.gha.EndGroup()
		s.runner.mu.Lock()
		defer s.runner.mu.Unlock()
		if _, err := s.runner.out.Write(s.buf.Bytes()); err != nil {
			logging.LogDebug("⚠️ Failed to write log group: %v", err)
		}
	})
}

// AddPath appends path to the GITHUB_PATH file, so that later steps find it
// on PATH, and prepends it to the PATH of this process
func (r *Runner) AddPath(path string) error {
	if r.getenv("GITHUB_PATH") == "" {
		return ErrNoPathFile
	}
	r.gha.AddPath(path)
	if err := envpath.PrependProcessPath(path); err != nil {
		return fmt.Errorf("failed to update PATH: %w", err)
	}
	return nil
}

// Fail writes err as an error annotation
func (r *Runner) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gha.Errorf("%s", err.Error())
}
