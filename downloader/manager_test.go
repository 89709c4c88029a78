package downloader

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gtkup/downloader/core"
	"gtkup/downloader/network"
	"gtkup/logging"
	"gtkup/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, srv *fakeServer) *Manager {
	t.Helper()
	return NewManager(core.Options{
		WorkRoot:      t.TempDir(),
		HTTPClient:    srv.client(),
		SkipDiskCheck: true,
	})
}

func x64Target(baseDir string) repository.Target {
	return repository.Resolve("x64", baseDir)[0]
}

func TestManagerInstall(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{
		"bin/gtk3-demo.exe": "demo",
		"lib/libgtk-3.dll":  "gtk",
	}))
	m := newTestManager(t, srv)
	target := x64Target(t.TempDir())

	result, err := m.Install(context.Background(), target, logging.DiscardNarrator{}.Group("x64"))
	require.NoError(t, err)

	assert.Equal(t, target, result.Target)
	assert.Positive(t, result.Bytes)
	data, err := os.ReadFile(filepath.Join(target.Destination, "bin", "gtk3-demo.exe"))
	require.NoError(t, err)
	assert.Equal(t, "demo", string(data))
	assert.Equal(t, 1, srv.downloads(repository.URL64))
}

func TestManagerRemovesWorkDir(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "a"}))
	workRoot := t.TempDir()
	m := NewManager(core.Options{WorkRoot: workRoot, HTTPClient: srv.client(), SkipDiskCheck: true})

	_, err := m.Install(context.Background(), x64Target(t.TempDir()), logging.DiscardNarrator{}.Group("x64"))
	require.NoError(t, err)

	entries, err := os.ReadDir(workRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManagerKeepDownloads(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "a"}))
	m := NewManager(core.Options{WorkRoot: t.TempDir(), HTTPClient: srv.client(), SkipDiskCheck: true, KeepDownloads: true})

	result, err := m.Install(context.Background(), x64Target(t.TempDir()), logging.DiscardNarrator{}.Group("x64"))
	require.NoError(t, err)
	assert.FileExists(t, result.Archive)
}

func TestManagerNetworkFailure(t *testing.T) {
	srv := newFakeServer()
	srv.fail(repository.URL64, http.StatusNotFound)
	m := newTestManager(t, srv)
	target := x64Target(t.TempDir())

	_, err := m.Install(context.Background(), target, logging.DiscardNarrator{}.Group("x64"))
	require.Error(t, err)

	var netErr *core.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "x64", netErr.Arch)
	var statusErr *network.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.NoDirExists(t, target.Destination)
}

func TestManagerExtractionFailure(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, []byte("<html>gateway error</html>"))
	m := newTestManager(t, srv)
	target := x64Target(t.TempDir())

	_, err := m.Install(context.Background(), target, logging.DiscardNarrator{}.Group("x64"))
	require.Error(t, err)

	var extractErr *core.ExtractionError
	assert.True(t, errors.As(err, &extractErr))
	assert.NoDirExists(t, target.Destination)
}

func TestManagerRefusesPopulatedDestination(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "new"}))
	m := newTestManager(t, srv)
	target := x64Target(t.TempDir())
	require.NoError(t, os.MkdirAll(target.Destination, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target.Destination, "old.dll"), []byte("old"), 0644))

	_, err := m.Install(context.Background(), target, logging.DiscardNarrator{}.Group("x64"))
	require.Error(t, err)

	var installErr *core.InstallError
	require.True(t, errors.As(err, &installErr))
	assert.ErrorIs(t, err, core.ErrDestinationExists)
	assert.FileExists(t, filepath.Join(target.Destination, "old.dll"))
	assert.NoFileExists(t, filepath.Join(target.Destination, "bin", "a.dll"))
}

func TestManagerAcceptsEmptyDestination(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "a"}))
	m := newTestManager(t, srv)
	target := x64Target(t.TempDir())
	require.NoError(t, os.MkdirAll(target.Destination, 0755))

	_, err := m.Install(context.Background(), target, logging.DiscardNarrator{}.Group("x64"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(target.Destination, "bin", "a.dll"))
}

func TestManagerDiskCheckUsesHead(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "a"}))
	m := NewManager(core.Options{WorkRoot: t.TempDir(), HTTPClient: srv.client()})

	_, err := m.Install(context.Background(), x64Target(t.TempDir()), logging.DiscardNarrator{}.Group("x64"))
	require.NoError(t, err)
	assert.Equal(t, 1, srv.downloads(repository.URL64), "HEAD is not counted as a download")
}

type recordingSection struct {
	lines []string
	ended bool
}

func (s *recordingSection) Infof(format string, args ...any) {
	s.lines = append(s.lines, format)
}

func (s *recordingSection) End() { s.ended = true }

func TestManagerNarratesSteps(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "a"}))
	m := newTestManager(t, srv)
	section := &recordingSection{}

	_, err := m.Install(context.Background(), x64Target(t.TempDir()), section)
	require.NoError(t, err)

	assert.Equal(t, []string{"Downloading %s ...", "Extracting %s ...", "Moving %s to %s ..."}, section.lines)
}

func TestManagerInstallsTarXzServedForZip(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildTarXz(t, map[string]string{"bin/libgtk-3-0.dll": "gtk"}))
	m := newTestManager(t, srv)
	target := x64Target(t.TempDir())
	require.Equal(t, repository.FormatZip, target.Format)

	_, err := m.Install(context.Background(), target, logging.DiscardNarrator{}.Group("x64"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(target.Destination, "bin", "libgtk-3-0.dll"))
	require.NoError(t, err)
	assert.Equal(t, "gtk", string(data))
}

func TestManagerWorkDirFailureIsInstallError(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "a"}))
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	m := NewManager(core.Options{
		WorkRoot:      filepath.Join(blocker, "work"),
		HTTPClient:    srv.client(),
		SkipDiskCheck: true,
	})
	target := x64Target(t.TempDir())

	_, err := m.Install(context.Background(), target, logging.DiscardNarrator{}.Group("x64"))
	require.Error(t, err)

	var installErr *core.InstallError
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, "x64", installErr.Arch)
	var netErr *core.NetworkError
	assert.False(t, errors.As(err, &netErr))
	assert.Equal(t, 0, srv.totalDownloads())
	assert.NoDirExists(t, target.Destination)
}

func TestManagerWaitWithProgress(t *testing.T) {
	srv := newFakeServer()
	srv.serve(repository.URL64, buildZip(t, map[string]string{"bin/a.dll": "a"}))
	m := NewManager(core.Options{
		WorkRoot:      t.TempDir(),
		HTTPClient:    srv.client(),
		SkipDiskCheck: true,
		Progress:      true,
	})

	_, err := m.Install(context.Background(), x64Target(t.TempDir()), logging.DiscardNarrator{}.Group("x64"))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("progress output did not finish")
	}
}

func TestManagerInstallFailedCopyLeavesNoDestination(t *testing.T) {
	if !core.IsCrossDevice(&os.LinkError{Err: errCrossDevice}) {
		t.Skip("no cross-device error on this platform")
	}
	m := newTestManager(t, newFakeServer())
	src := filepath.Join(t.TempDir(), "extracted")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0755))
	dst := filepath.Join(t.TempDir(), "x64")

	m.rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errCrossDevice}
	}
	m.copyDir = func(from, to string) error {
		require.NoError(t, os.MkdirAll(filepath.Join(to, "bin"), 0755))
		return errors.New("disk full")
	}

	err := m.install(src, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoDirExists(t, dst)
	assert.DirExists(t, src)
}

func TestManagerInstallCopiesAcrossVolumes(t *testing.T) {
	if !core.IsCrossDevice(&os.LinkError{Err: errCrossDevice}) {
		t.Skip("no cross-device error on this platform")
	}
	m := newTestManager(t, newFakeServer())
	src := filepath.Join(t.TempDir(), "extracted")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bin", "gtk.dll"), []byte("gtk"), 0644))
	dst := filepath.Join(t.TempDir(), "x64")

	renamed := 0
	m.rename = func(oldpath, newpath string) error {
		renamed++
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errCrossDevice}
	}

	require.NoError(t, m.install(src, dst))

	assert.Equal(t, 1, renamed)
	assert.NoDirExists(t, src)
	data, err := os.ReadFile(filepath.Join(dst, "bin", "gtk.dll"))
	require.NoError(t, err)
	assert.Equal(t, "gtk", string(data))
}

func TestManagerInstallOtherRenameError(t *testing.T) {
	m := newTestManager(t, newFakeServer())
	src := filepath.Join(t.TempDir(), "extracted")
	require.NoError(t, os.MkdirAll(src, 0755))
	dst := filepath.Join(t.TempDir(), "x64")

	copied := false
	m.rename = func(string, string) error { return os.ErrPermission }
	m.copyDir = func(string, string) error {
		copied = true
		return nil
	}

	err := m.install(src, dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.False(t, copied)
	assert.DirExists(t, src)
}
