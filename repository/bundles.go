package repository

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Format is the archive format a bundle is published in
type Format string

const (
	FormatZip   Format = "zip"
	FormatTarXz Format = "tar.xz"
	FormatTarGz Format = "tar.gz"
)

// Bundle is one entry of the static bundle table
type Bundle struct {
	Arch      string   // suffix of the install directory
	Selectors []string // substrings of the arch input that select the bundle
	URL       string
	Format    Format
}

// Target is one bundle bound to its install directory
type Target struct {
	Arch        string `json:"arch"`
	URL         string `json:"url"`
	Destination string `json:"destination"`
	Format      Format `json:"format"`
}

const (
	// URL32 is the GTK+ 2.22 all-in-one bundle for 32-bit Windows
	URL32 = "https://ftp.gnome.org/pub/gnome/binaries/win32/gtk+/2.22/gtk+-bundle_2.22.1-20101227_win32.zip"
	// URL64 is the GTK+ 2.22 all-in-one bundle for 64-bit Windows
	URL64 = "https://ftp.gnome.org/pub/gnome/binaries/win64/gtk+/2.22/gtk+-bundle_2.22.1-20101229_win64.zip"
)

// bundles is ordered: resolution follows this order
var bundles = []Bundle{
	{Arch: "i386", Selectors: []string{"32", "86"}, URL: URL32, Format: FormatZip},
	{Arch: "x64", Selectors: []string{"64"}, URL: URL64, Format: FormatZip},
}

// aliases name a 64-bit target while containing a 32-bit selector
var aliases = regexp.MustCompile(`(?i)x86[_-]64`)

// Bundles returns a copy of the bundle table
func Bundles() []Bundle {
	out := make([]Bundle, len(bundles))
	for i, b := range bundles {
		out[i] = b
		out[i].Selectors = append([]string(nil), b.Selectors...)
	}
	return out
}

// Resolve selects the bundles whose selectors occur anywhere in the arch
// input and binds them to baseDir. Each bundle is tested independently, so
// "x86,x64", "32 64" and "win32-win64" all select both, while "x86_64"
// selects only x64. An input matching nothing yields an empty, non-nil
// slice. baseDir is not validated.
func Resolve(selector, baseDir string) []Target {
	selector = aliases.ReplaceAllString(selector, "x64")
	targets := make([]Target, 0, len(bundles))
	for _, b := range bundles {
		if !b.Matches(selector) {
			continue
		}
		targets = append(targets, Target{
			Arch:        b.Arch,
			URL:         b.URL,
			Destination: filepath.Join(baseDir, b.Arch),
			Format:      b.Format,
		})
	}
	return targets
}

// Matches reports whether any selector of the bundle occurs in s
func (b Bundle) Matches(s string) bool {
	for _, sel := range b.Selectors {
		if strings.Contains(s, sel) {
			return true
		}
	}
	return false
}

// Destinations returns the install directories of targets, in order
func Destinations(targets []Target) []string {
	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		paths = append(paths, t.Destination)
	}
	return paths
}
