//go:build linux || darwin || freebsd

package core

import (
	"errors"

	"golang.org/x/sys/unix"
)

func freeSpace(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
