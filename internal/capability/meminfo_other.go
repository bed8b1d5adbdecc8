//go:build !linux

package capability

import "errors"

// readTotalMemory has no portable implementation off Linux; the detector
// falls back to a conservative default.
func readTotalMemory() (uint64, error) {
	return 0, errors.New("total memory probe unsupported on this platform")
}
