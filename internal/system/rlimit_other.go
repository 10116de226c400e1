//go:build !linux && !darwin

package system

// RaiseFileLimit is a no-op where open-file limits are not adjustable.
func RaiseFileLimit(want uint64) (uint64, error) {
	return want, nil
}
