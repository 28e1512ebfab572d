package txrx

import "time"

// Channel is an open, configured duplex byte stream bound to one device.
// Close is safe to call more than once and from another goroutine; it
// unblocks a pending ReadAvailable, which then returns ErrClosed.
type Channel interface {
	// Write writes p to the device and returns how much was accepted.
	// A short count with a nil error is possible.
	Write(p []byte) (int, error)
	// ReadAvailable waits at most maxWait for input and returns whatever
	// arrived. It returns (nil, nil) if nothing arrived in time and io.EOF
	// once the device signals end of stream.
	ReadAvailable(maxWait time.Duration) ([]byte, error)
	Close() error
}

// Drainer is implemented by channels that can wait for written bytes to
// leave the transmit queue.
type Drainer interface {
	Drain() error
}

// Opener opens a Channel for the given settings.
type Opener func(PortConfig) (Channel, error)

// Open opens cfg.Device exclusively and applies the line settings before
// returning. Failures are *OpenError.
func Open(cfg PortConfig) (Channel, error) {
	return openPort(cfg)
}

// readChunk is the largest read handed back by one ReadAvailable call.
const readChunk = 4096

// Logf receives library notices that have no caller to return to, such as a
// failed Close during cleanup. It is a no-op by default.
var Logf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces Logf. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

