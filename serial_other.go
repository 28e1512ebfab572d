//go:build !linux

package txrx

import (
	"errors"
	"sync"
	"time"

	"go.bug.st/serial"
)

// openSerial is swapped in tests.
var openSerial = func(name string, mode *serial.Mode) (serial.Port, error) {
	return serial.Open(name, mode)
}

// bugstPort adapts a go.bug.st/serial port to Channel. Bounded reads use the
// port's read timeout.
type bugstPort struct {
	port      serial.Port
	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	timeout   time.Duration
}

func openPort(cfg PortConfig) (Channel, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if cfg.Parity == ParityEven {
		mode.Parity = serial.EvenParity
	}
	if cfg.StopBits == TwoStopBits {
		mode.StopBits = serial.TwoStopBits
	}

	port, err := openSerial(cfg.Device, mode)
	if err != nil {
		return nil, &OpenError{Path: cfg.Device, Kind: portErrorKind(err), Err: err}
	}
	if err := port.ResetInputBuffer(); err != nil {
		Logf("txrx: flush %s: %v", cfg.Device, err)
	}
	return &bugstPort{port: port, done: make(chan struct{}), timeout: -1}, nil
}

func portErrorKind(err error) OpenErrorKind {
	var perr *serial.PortError
	if !errors.As(err, &perr) {
		return OpenUnknown
	}
	switch perr.Code() {
	case serial.PortNotFound:
		return NotFound
	case serial.PermissionDenied:
		return PermissionDenied
	case serial.PortBusy:
		return Busy
	case serial.InvalidSerialPort:
		return NotATerminal
	case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits:
		return UnsupportedConfig
	default:
		return OpenUnknown
	}
}

func (p *bugstPort) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *bugstPort) Write(b []byte) (int, error) {
	if p.closed() {
		return 0, ErrClosed
	}
	return p.port.Write(b)
}

func (p *bugstPort) ReadAvailable(maxWait time.Duration) ([]byte, error) {
	if p.closed() {
		return nil, ErrClosed
	}
	if maxWait < time.Millisecond {
		maxWait = time.Millisecond
	}

	p.mu.Lock()
	if p.timeout != maxWait {
		if err := p.port.SetReadTimeout(maxWait); err != nil {
			p.mu.Unlock()
			return nil, err
		}
		p.timeout = maxWait
	}
	p.mu.Unlock()

	buf := make([]byte, readChunk)
	n, err := p.port.Read(buf)
	if p.closed() {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	// go.bug.st/serial reports an expired read timeout as a zero byte read.
	if n == 0 {
		return nil, nil
	}
	return buf[:n], nil
}

func (p *bugstPort) Drain() error {
	if p.closed() {
		return ErrClosed
	}
	return p.port.Drain()
}

func (p *bugstPort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.port.Close()
	})
	return err
}
