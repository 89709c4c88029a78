package downloader

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gtkup/logging"
	"gtkup/repository"

	"github.com/ulikunitz/xz"
)

// ErrIllegalPath is returned for archive entries escaping the extraction directory
var ErrIllegalPath = errors.New("illegal file path in archive")

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// magic numbers of the supported archive formats
var signatures = []struct {
	format repository.Format
	magic  []byte
}{
	{repository.FormatZip, []byte("PK\x03\x04")},
	{repository.FormatZip, []byte("PK\x05\x06")}, // empty archive
	{repository.FormatTarXz, []byte("\xfd7zXZ\x00")},
	{repository.FormatTarGz, []byte("\x1f\x8b")},
}

// DetectFormat identifies the archive by its leading bytes. When they match
// no known format, declared is returned and the extractor reports the error.
func DetectFormat(archivePath string, declared repository.Format) (repository.Format, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	head := make([]byte, 6)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read archive header: %w", err)
	}
	head = head[:n]

	for _, sig := range signatures {
		if bytes.HasPrefix(head, sig.magic) {
			return sig.format, nil
		}
	}
	return declared, nil
}

// Extract unpacks archivePath into destDir. The format is taken from the
// archive content; declared is used when the content is not recognized.
func (e *Extractor) Extract(declared repository.Format, archivePath, destDir string) error {
	format, err := DetectFormat(archivePath, declared)
	if err != nil {
		return err
	}
	if format != declared {
		logging.LogDebug("🔍 %s is a %s archive, not %s", archivePath, format, declared)
	}

	switch format {
	case repository.FormatZip:
		return e.ExtractZip(archivePath, destDir)
	case repository.FormatTarXz:
		return e.ExtractTarXz(archivePath, destDir)
	case repository.FormatTarGz:
		return e.ExtractTarGz(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %q", format)
	}
}

// ExtractZip extracts a .zip archive to a destination directory
func (e *Extractor) ExtractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case mode&os.ModeSymlink != 0:
			link, err := readZipEntry(f)
			if err != nil {
				return err
			}
			if err := writeSymlink(destDir, target, string(link)); err != nil {
				return err
			}

		default:
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Name, err)
			}
			err = writeFile(target, rc, mode.Perm())
			rc.Close()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// ExtractTarXz extracts a .tar.xz archive to a destination directory
func (e *Extractor) ExtractTarXz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	xzReader, err := xz.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create xz reader: %w", err)
	}

	return e.extractTar(xzReader, destDir)
}

// ExtractTarGz extracts a .tar.gz archive to a destination directory
func (e *Extractor) ExtractTarGz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	return e.extractTar(gzipReader, destDir)
}

func (e *Extractor) extractTar(r io.Reader, destDir string) error {
	tarReader := tar.NewReader(r)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := writeSymlink(destDir, target, header.Linkname); err != nil {
				return err
			}

		default:
			// Skip other types (char devices, block devices, etc.)
			continue
		}
	}

	return nil
}

// safeJoin resolves an archive entry name below destDir
func safeJoin(destDir, name string) (string, error) {
	cleaned := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("%w: %s", ErrIllegalPath, name)
	}

	target := filepath.Join(destDir, cleaned)
	root := filepath.Clean(destDir)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrIllegalPath, name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}
	// Archives written on Windows often carry no permission bits
	if perm == 0 {
		perm = 0644
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}

func writeSymlink(destDir, target, link string) error {
	resolved := link
	if !filepath.IsAbs(link) {
		resolved = filepath.Join(filepath.Dir(target), link)
	}
	root := filepath.Clean(destDir)
	if !strings.HasPrefix(filepath.Clean(resolved)+string(os.PathSeparator), root+string(os.PathSeparator)) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrIllegalPath, target, link)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}
	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("create symlink %s: %w", target, err)
	}
	return nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
