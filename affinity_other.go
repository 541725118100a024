//go:build !linux

package packsched

import "github.com/pkg/errors"

// PinToCPU is only supported on Linux.
func PinToCPU(cpu int) error {
	return errors.Errorf("packsched: cpu pinning is not supported on this platform (cpu %d)", cpu)
}
