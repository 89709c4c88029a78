package cache

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"gtkup/downloader/core"
	"gtkup/logging"
)

// Manager hands out per-target work directories under a shared root.
// A work directory holds the downloaded archive and the extraction
// directory of one pipeline run; it is never shared between targets.
type Manager struct {
	root string

	mu          sync.Mutex
	createdRoot bool
}

// NewManager creates a new Manager rooted at root
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the directory work directories are created in
func (m *Manager) Root() string {
	return m.root
}

// PrepareWorkDir creates a fresh, uniquely named work directory for arch
func (m *Manager) PrepareWorkDir(arch string) (string, error) {
	// Held until the work directory exists, so pruneRoot cannot remove the
	// root in between
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.root); os.IsNotExist(err) {
		if err := os.MkdirAll(m.root, 0755); err != nil {
			return "", fmt.Errorf("failed to create work root: %w", err)
		}
		m.createdRoot = true
	}

	dir, err := os.MkdirTemp(m.root, "gtkup-"+arch+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	logging.LogDebug("📁 Work directory for %s: %s", arch, dir)
	return dir, nil
}

// CreateArchiveFile creates the file a download is written to, named after
// the last path element of rawURL
func (m *Manager) CreateArchiveFile(workDir, rawURL string) (*os.File, error) {
	name := "download"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name = base
		}
	}
	f, err := os.Create(filepath.Join(workDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create archive file: %w", err)
	}
	return f, nil
}

// CreateExtractDir creates an empty directory for archive contents
func (m *Manager) CreateExtractDir(workDir string) (string, error) {
	dir, err := os.MkdirTemp(workDir, "extract-")
	if err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}
	return dir, nil
}

// CleanupWorkDir removes a work directory unless keep is set
func (m *Manager) CleanupWorkDir(workDir string, keep bool) error {
	if keep {
		logging.LogDebug("📦 Keeping work directory: %s", workDir)
		return nil
	}
	logging.LogDebug("🧹 Cleaning up work directory: %s", workDir)
	if err := os.RemoveAll(workDir); err != nil {
		return fmt.Errorf("failed to remove work directory: %w", err)
	}
	m.pruneRoot()
	return nil
}

// pruneRoot removes the root again if this manager created it and it is empty
func (m *Manager) pruneRoot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.createdRoot {
		return
	}
	if empty, err := core.IsDirEmpty(m.root); err != nil || !empty {
		return
	}
	if err := os.Remove(m.root); err == nil {
		m.createdRoot = false
	}
}
