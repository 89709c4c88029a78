// Package envpath publishes installed directories on the executable search path.
package envpath

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gtkup/logging"
)

// Publisher adds a path-list string to the search path seen by later build steps
type Publisher interface {
	AddPath(path string) error
}

// Join concatenates paths with the host path-list separator
func Join(paths []string) string {
	return strings.Join(paths, string(os.PathListSeparator))
}

// Aggregate joins paths and hands the result to publisher. An empty list is
// not published, so that no empty segment ends up on the search path.
func Aggregate(paths []string, publisher Publisher) (string, error) {
	joined := Join(paths)
	if joined == "" {
		logging.LogDebug("ℹ️  Nothing to add to PATH")
		return "", nil
	}

	logging.LogInfo("Adding GTK to PATH...")
	if err := publisher.AddPath(joined); err != nil {
		return "", fmt.Errorf("failed to publish search path: %w", err)
	}
	logging.LogDebug("✅ Added %s to PATH", joined)
	return joined, nil
}

// PrependProcessPath puts path in front of the current process PATH
func PrependProcessPath(path string) error {
	current := os.Getenv("PATH")
	if current == "" {
		return os.Setenv("PATH", path)
	}
	return os.Setenv("PATH", path+string(os.PathListSeparator)+current)
}

// ProcessPublisher adds paths to the PATH of the current process only
type ProcessPublisher struct{}

// AddPath prepends path to the process PATH
func (ProcessPublisher) AddPath(path string) error {
	return PrependProcessPath(path)
}

// Recorder keeps published paths in memory
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

// AddPath records path
func (r *Recorder) AddPath(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

// Paths returns every recorded path, in publish order
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}
