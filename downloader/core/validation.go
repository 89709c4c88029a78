package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gtkup/logging"

	"github.com/dustin/go-humanize"
)

var (
	// ErrDestinationExists is returned when the install directory is already populated
	ErrDestinationExists = errors.New("destination already exists")
	// ErrInsufficientSpace is returned by the disk space preflight
	ErrInsufficientSpace = errors.New("insufficient disk space")

	errFreeSpaceUnsupported = errors.New("free space check not supported on this platform")
)

// Validator handles system validations
type Validator struct {
	freeSpace func(dir string) (uint64, error)
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{freeSpace: freeSpace}
}

// ValidateSpace checks that the volume holding directory has at least
// required bytes available. directory does not need to exist yet.
// Platforms without a free space query pass the check.
func (v *Validator) ValidateSpace(required int64, directory string) error {
	if required <= 0 {
		return nil
	}

	dir, err := existingAncestor(directory)
	if err != nil {
		return err
	}

	available, err := v.freeSpace(dir)
	if errors.Is(err, errFreeSpaceUnsupported) {
		logging.LogDebug("⚠️  Skipping disk space check for %s: %v", dir, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query free space of %s: %w", dir, err)
	}

	if available < uint64(required) {
		return fmt.Errorf("%w in %s: %s required, %s available", ErrInsufficientSpace, dir,
			humanize.IBytes(uint64(required)), humanize.IBytes(available))
	}

	logging.LogDebug("💾 %s available in %s (%s required)", humanize.IBytes(available), dir, humanize.IBytes(uint64(required)))
	return nil
}

// ValidateDestination prepares the parent of an install directory and makes
// sure nothing occupies the directory itself. An empty directory is removed
// so that the bundle can be moved in its place; anything else is an error,
// installs never merge into or overwrite existing content.
func (v *Validator) ValidateDestination(destination string) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	info, err := os.Lstat(destination)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect destination: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDestinationExists, destination)
	}

	empty, err := IsDirEmpty(destination)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("%w: %s is not empty", ErrDestinationExists, destination)
	}

	logging.LogDebug("🧹 Removing empty destination directory %s", destination)
	if err := os.Remove(destination); err != nil {
		return fmt.Errorf("failed to remove empty destination: %w", err)
	}
	return nil
}

// IsDirEmpty reports whether a directory has no entries
func IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == nil {
		return false, nil // Directory not empty
	}
	if errors.Is(err, io.EOF) {
		return true, nil // Directory empty
	}
	return false, fmt.Errorf("failed to check if directory is empty: %w", err)
}

// IsCrossDevice reports whether a rename failed because source and
// destination live on different volumes
func IsCrossDevice(err error) bool {
	return isCrossDevice(err)
}

func existingAncestor(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	for {
		if _, err := os.Stat(abs); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return abs, nil
		}
		abs = parent
	}
}
