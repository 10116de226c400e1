//go:build linux || darwin

package system

import (
	"fmt"
	"syscall"
)

// RaiseFileLimit lifts the soft open-file limit to want, capped by the hard
// limit. Preloading a PDF deck keeps one handle per worker plus the images.
func RaiseFileLimit(want uint64) (uint64, error) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}
	if uint64(rLimit.Cur) >= want {
		return uint64(rLimit.Cur), nil
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, fmt.Errorf("setrlimit: %w", err)
	}
	return uint64(rLimit.Cur), nil
}
