//go:build linux

package txrx

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// linuxPort is a raw termios serial port. Reads and writes wait in poll(2) on
// the device and a self-pipe, so Close from another goroutine wakes them.
type linuxPort struct {
	fd        int
	device    string
	done      chan struct{}
	closeOnce sync.Once
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

func openPort(cfg PortConfig) (Channel, error) {
	fd, err := unix.Open(cfg.Device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &OpenError{Path: cfg.Device, Kind: openErrorKind(err), Err: err}
	}
	exclusive := false
	fail := func(kind OpenErrorKind, err error) (Channel, error) {
		if exclusive {
			unix.IoctlSetInt(fd, unix.TIOCNXCL, 0)
		}
		unix.Close(fd)
		return nil, &OpenError{Path: cfg.Device, Kind: kind, Err: err}
	}

	// Advisory lock so a second txrx on the same device fails fast.
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if err == unix.EWOULDBLOCK {
			return fail(Busy, err)
		}
		return fail(openErrorKind(err), err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		if err == unix.ENOTTY || err == unix.EINVAL {
			return fail(NotATerminal, err)
		}
		return fail(openErrorKind(err), fmt.Errorf("get termios: %w", err))
	}

	// TIOCEXCL makes further non-root opens fail with EBUSY, including
	// from tools that never flock.
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		return fail(openErrorKind(err), fmt.Errorf("set exclusive: %w", err))
	}
	exclusive = true

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB | unix.CBAUD | unix.CIBAUD | unix.CRTSCTS
	termios.Cflag |= unix.CREAD | unix.CLOCAL | dataBitsFlag(cfg.DataBits)
	if cfg.Parity == ParityEven {
		termios.Cflag |= unix.PARENB
	}
	if cfg.StopBits == TwoStopBits {
		termios.Cflag |= unix.CSTOPB
	}

	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := applyTermios(fd, termios, cfg.BaudRate); err != nil {
		if errors.Is(err, unix.EINVAL) {
			return fail(UnsupportedConfig, err)
		}
		return fail(openErrorKind(err), fmt.Errorf("set termios: %w", err))
	}

	// Drop anything that arrived before this session.
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH); err != nil {
		Logf("txrx: flush %s: %v", cfg.Device, err)
	}

	pipeFds := make([]int, 2)
	if err := unix.Pipe2(pipeFds, unix.O_CLOEXEC); err != nil {
		return fail(OpenUnknown, fmt.Errorf("pipe: %w", err))
	}

	// The fd stays non-blocking: reads, writes and drains all wait in poll
	// alongside the self-pipe, so Close can always wake them.
	return &linuxPort{
		fd:     fd,
		device: cfg.Device,
		done:   make(chan struct{}),
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// applyTermios sets the line settings with a standard Bnnn speed where one
// exists, and with an arbitrary rate through termios2 otherwise.
func applyTermios(fd int, t *unix.Termios, rate int) error {
	if speed, ok := baudToUnix(rate); ok {
		t.Cflag |= speed
		return unix.IoctlSetTermios(fd, unix.TCSETS, t)
	}
	if uint64(rate) > math.MaxUint32 {
		return fmt.Errorf("baud rate %d: %w", rate, unix.EINVAL)
	}
	return setCustomBaud(fd, t, uint32(rate))
}

func (p *linuxPort) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *linuxPort) Write(b []byte) (int, error) {
	for {
		if p.closed() {
			return 0, ErrClosed
		}
		n, err := unix.Write(p.fd, b)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			if err := p.waitWritable(-1); err != nil {
				return 0, err
			}
			continue
		}
		return 0, err
	}
}

// waitWritable polls until the device accepts output, the timeout (ms, -1
// for none) passes, or Close is called.
func (p *linuxPort) waitWritable(timeout int) error {
	pfd := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLOUT},
		{Fd: int32(p.pipeR), Events: unix.POLLIN},
	}
	_, err := unix.Poll(pfd, timeout)
	if err != nil && err != unix.EINTR {
		return err
	}
	if p.closed() || pfd[1].Revents&unix.POLLIN != 0 {
		return ErrClosed
	}
	if pfd[0].Revents&unix.POLLNVAL != 0 {
		return ErrClosed
	}
	return nil
}

func (p *linuxPort) ReadAvailable(maxWait time.Duration) ([]byte, error) {
	if p.closed() {
		return nil, ErrClosed
	}

	// Round up so a sub-millisecond remainder still waits instead of spinning.
	timeout := 0
	if maxWait > 0 {
		timeout = int((maxWait + time.Millisecond - 1) / time.Millisecond)
	}

	pfd := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLIN},
		{Fd: int32(p.pipeR), Events: unix.POLLIN},
	}
	n, err := unix.Poll(pfd, timeout)
	if err == unix.EINTR {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.closed() || pfd[1].Revents&unix.POLLIN != 0 {
		return nil, ErrClosed
	}
	if n == 0 {
		return nil, nil
	}
	if pfd[0].Revents&unix.POLLNVAL != 0 {
		return nil, ErrClosed
	}
	if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return nil, nil
	}

	buf := make([]byte, readChunk)
	n, err = unix.Read(p.fd, buf)
	switch {
	case err == unix.EINTR || err == unix.EAGAIN:
		return nil, nil
	case err != nil:
		return nil, err
	case n == 0:
		return nil, io.EOF
	}
	return buf[:n], nil
}

// drainPoll is how often Drain rechecks the output queue.
const drainPoll = 10 * time.Millisecond

// Drain waits until the output queue is empty, then issues tcdrain for the
// last character in the shift register. Close wakes a pending Drain.
func (p *linuxPort) Drain() error {
	for {
		if p.closed() {
			return ErrClosed
		}
		queued, err := unix.IoctlGetInt(p.fd, unix.TIOCOUTQ)
		if err != nil && err != unix.EINTR {
			return err
		}
		if err == nil && queued == 0 {
			break
		}
		if err := p.sleep(drainPoll); err != nil {
			return err
		}
	}
	for {
		err := unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
		if err != unix.EINTR {
			return err
		}
	}
}

// sleep waits d or until Close is called.
func (p *linuxPort) sleep(d time.Duration) error {
	pfd := []unix.PollFd{{Fd: int32(p.pipeR), Events: unix.POLLIN}}
	_, err := unix.Poll(pfd, int(d/time.Millisecond))
	if err != nil && err != unix.EINTR {
		return err
	}
	if p.closed() || pfd[0].Revents&unix.POLLIN != 0 {
		return ErrClosed
	}
	return nil
}

// Close releases the device and wakes any pending ReadAvailable, Write or
// Drain. Subsequent calls are no-ops.
func (p *linuxPort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		unix.Write(p.pipeW, []byte{1})
		unix.IoctlSetInt(p.fd, unix.TIOCNXCL, 0)
		err = unix.Close(p.fd)
		unix.Close(p.pipeR)
		unix.Close(p.pipeW)
	})
	return err
}

func openErrorKind(err error) OpenErrorKind {
	switch err {
	case unix.ENOENT, unix.ENODEV, unix.ENXIO:
		return NotFound
	case unix.EACCES, unix.EPERM, unix.EROFS:
		return PermissionDenied
	case unix.EBUSY:
		return Busy
	case unix.ENOTTY, unix.EISDIR:
		return NotATerminal
	default:
		return OpenUnknown
	}
}

func dataBitsFlag(bits int) uint32 {
	switch bits {
	case 5:
		return unix.CS5
	case 6:
		return unix.CS6
	case 7:
		return unix.CS7
	default:
		return unix.CS8
	}
}

var baudRates = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

func baudToUnix(baud int) (uint32, bool) {
	b, ok := baudRates[baud]
	return b, ok
}
