//go:build !linux && !darwin && !freebsd && !windows

package core

func freeSpace(string) (uint64, error) {
	return 0, errFreeSpaceUnsupported
}

func isCrossDevice(error) bool {
	return false
}
