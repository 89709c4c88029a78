//go:build !linux && !darwin && !freebsd && !windows

package downloader

import "errors"

var errCrossDevice = errors.New("cross-device link")
