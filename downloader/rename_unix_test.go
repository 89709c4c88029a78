//go:build linux || darwin || freebsd

package downloader

import "golang.org/x/sys/unix"

var errCrossDevice error = unix.EXDEV
