package core

import (
	"net/http"
	"time"
)

// Options configures the download and installation pipeline
type Options struct {
	WorkRoot      string        // directory under which per-target work directories are created
	KeepDownloads bool          // keep work directories (downloaded archives) after the run
	HTTPTimeout   time.Duration // zero disables the timeout
	UserAgent     string
	Progress      bool // render progress bars on stderr
	SkipDiskCheck bool

	// HTTPClient replaces the default client, mostly for tests
	HTTPClient *http.Client
}
