//go:build linux && !ppc && !ppc64 && !ppc64le

package txrx

import "golang.org/x/sys/unix"

// setCustomBaud applies t with an arbitrary rate via BOTHER and TCSETS2.
func setCustomBaud(fd int, t *unix.Termios, rate uint32) error {
	t.Cflag &^= unix.CBAUD | unix.CIBAUD
	t.Cflag |= unix.BOTHER
	t.Ispeed = rate
	t.Ospeed = rate
	return unix.IoctlSetTermios(fd, unix.TCSETS2, t)
}
