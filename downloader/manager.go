package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gtkup/downloader/cache"
	"gtkup/downloader/core"
	"gtkup/downloader/network"
	"gtkup/logging"
	"gtkup/repository"

	"github.com/dustin/go-humanize"
)

// extractionFactor estimates unpacked size from archive size
const extractionFactor = 3

// Manager runs the download, extract and install pipeline for one target
// at a time. A single Manager may serve concurrent Install calls.
type Manager struct {
	network   *network.Client
	extractor *Extractor
	workspace *cache.Manager
	validator *core.Validator
	opts      core.Options

	rename  func(oldpath, newpath string) error
	copyDir func(src, dst string) error
}

// NewManager creates a new Manager instance
func NewManager(opts core.Options) *Manager {
	clientOpts := []network.Option{
		network.WithHTTPClient(opts.HTTPClient),
		network.WithUserAgent(opts.UserAgent),
	}
	if opts.HTTPClient == nil {
		clientOpts = append(clientOpts, network.WithTimeout(opts.HTTPTimeout))
	}
	if opts.Progress {
		clientOpts = append(clientOpts, network.WithProgress(os.Stderr))
	}

	workRoot := opts.WorkRoot
	if workRoot == "" {
		workRoot = os.TempDir()
	}

	return &Manager{
		network:   network.NewClient(clientOpts...),
		extractor: NewExtractor(),
		workspace: cache.NewManager(workRoot),
		validator: core.NewValidator(),
		opts:      opts,
		rename:    os.Rename,
		copyDir:   copyTree,
	}
}

// Install downloads target.URL, extracts it and moves the extracted tree to
// target.Destination. Every step gates the next; failures are returned as
// *core.NetworkError, *core.ExtractionError or *core.InstallError.
func (m *Manager) Install(ctx context.Context, target repository.Target, section logging.Section) (*Result, error) {
	start := time.Now()
	log := logging.With("arch", target.Arch)
	log.Debug("starting installation", "url", target.URL, "destination", target.Destination)

	workDir, err := m.workspace.PrepareWorkDir(target.Arch)
	if err != nil {
		return nil, &core.InstallError{Arch: target.Arch, Destination: target.Destination, Err: err}
	}
	defer func() {
		if err := m.workspace.CleanupWorkDir(workDir, m.opts.KeepDownloads); err != nil {
			log.Warn("work directory cleanup failed", "error", err)
		}
	}()

	if !m.opts.SkipDiskCheck {
		if err := m.checkSpace(ctx, target); err != nil {
			return nil, &core.InstallError{Arch: target.Arch, Destination: target.Destination, Err: err}
		}
	}

	archiveFile, err := m.workspace.CreateArchiveFile(workDir, target.URL)
	if err != nil {
		return nil, &core.InstallError{Arch: target.Arch, Destination: target.Destination, Err: err}
	}

	section.Infof("Downloading %s ...", target.URL)
	archive, written, err := m.download(ctx, target, archiveFile)
	if err != nil {
		return nil, &core.NetworkError{Arch: target.Arch, URL: target.URL, Err: err}
	}
	log.Debug("download finished", "archive", archive, "size", humanize.IBytes(uint64(written)))

	section.Infof("Extracting %s ...", archive)
	extracted, err := m.workspace.CreateExtractDir(workDir)
	if err == nil {
		err = m.extractor.Extract(target.Format, archive, extracted)
	}
	if err != nil {
		return nil, &core.ExtractionError{Arch: target.Arch, Archive: archive, Err: err}
	}

	section.Infof("Moving %s to %s ...", extracted, target.Destination)
	if err := m.install(extracted, target.Destination); err != nil {
		return nil, &core.InstallError{Arch: target.Arch, Destination: target.Destination, Err: err}
	}

	result := &Result{
		Target:   target,
		Archive:  archive,
		Bytes:    written,
		Duration: time.Since(start),
	}
	log.Info(fmt.Sprintf("✅ Installed %s bundle into %s", target.Arch, target.Destination),
		"size", humanize.IBytes(uint64(written)), "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// download writes target.URL into f and closes it
func (m *Manager) download(ctx context.Context, target repository.Target, f *os.File) (string, int64, error) {
	written, err := m.network.Download(ctx, target.URL, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close archive file: %w", closeErr)
	}
	if err != nil {
		return "", written, err
	}
	return f.Name(), written, nil
}

// checkSpace verifies the work and install volumes can hold the bundle.
// The size comes from a HEAD request; when it is unavailable the check is skipped.
func (m *Manager) checkSpace(ctx context.Context, target repository.Target) error {
	size, err := m.network.GetFileSize(ctx, target.URL)
	if err != nil {
		logging.LogDebug("⚠️ Skipping disk space check for %s: %v", target.Arch, err)
		return nil
	}

	if err := m.validator.ValidateSpace(size*(1+extractionFactor), m.workspace.Root()); err != nil {
		return fmt.Errorf("work directory space check failed: %w", err)
	}
	if err := m.validator.ValidateSpace(size*extractionFactor, filepath.Dir(target.Destination)); err != nil {
		return fmt.Errorf("install directory space check failed: %w", err)
	}
	return nil
}

// install moves src to dst. A rename is used when possible; across volumes
// the tree is copied and the source removed, keeping move semantics.
func (m *Manager) install(src, dst string) error {
	if err := m.validator.ValidateDestination(dst); err != nil {
		return err
	}

	err := m.rename(src, dst)
	if err == nil {
		return nil
	}
	if !core.IsCrossDevice(err) {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}

	logging.LogDebug("🔀 %s and %s are on different volumes, copying", src, dst)
	if err := m.copyDir(src, dst); err != nil {
		os.RemoveAll(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

// Wait flushes progress output
func (m *Manager) Wait() {
	m.network.Wait()
}
