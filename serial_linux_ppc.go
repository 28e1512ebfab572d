//go:build linux && (ppc || ppc64 || ppc64le)

package txrx

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setCustomBaud reports non-standard rates as unsupported; x/sys has no
// TCSETS2 on powerpc.
func setCustomBaud(fd int, t *unix.Termios, rate uint32) error {
	return fmt.Errorf("baud rate %d: %w", rate, unix.EINVAL)
}
