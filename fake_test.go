package txrx

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// fakeRead is one scripted ReadAvailable result.
type fakeRead struct {
	data  []byte
	err   error
	delay time.Duration
}

// fakeChannel is an in-memory Channel. Once the script is used up reads
// block for their full bound, or report io.EOF if eof is set.
type fakeChannel struct {
	mu sync.Mutex

	script []fakeRead
	eof    bool

	written    bytes.Buffer
	maxWrite   int // 0 means unlimited
	stallWrite bool
	writeErr   error
	writeErrAt int // fail once this many bytes were written

	writes     int
	reads      int
	drains     int
	closeCalls int

	done      chan struct{}
	closeOnce sync.Once
}

func newFakeChannel(script ...fakeRead) *fakeChannel {
	return &fakeChannel{script: script, done: make(chan struct{})}
}

func (f *fakeChannel) isClosed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *fakeChannel) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.isClosed() {
		return 0, ErrClosed
	}
	if f.stallWrite {
		return 0, nil
	}
	if f.writeErr != nil && f.written.Len() >= f.writeErrAt {
		return 0, f.writeErr
	}
	n := len(p)
	if f.maxWrite > 0 && n > f.maxWrite {
		n = f.maxWrite
	}
	if f.writeErr != nil && f.written.Len()+n > f.writeErrAt {
		n = f.writeErrAt - f.written.Len()
	}
	f.written.Write(p[:n])
	return n, nil
}

func (f *fakeChannel) ReadAvailable(maxWait time.Duration) ([]byte, error) {
	f.mu.Lock()
	f.reads++
	if f.isClosed() {
		f.mu.Unlock()
		return nil, ErrClosed
	}
	if len(f.script) > 0 {
		step := f.script[0]
		f.script = f.script[1:]
		f.mu.Unlock()
		if step.delay > 0 {
			time.Sleep(min(step.delay, maxWait))
		}
		return step.data, step.err
	}
	eof := f.eof
	f.mu.Unlock()

	if eof {
		return nil, io.EOF
	}
	select {
	case <-f.done:
		return nil, ErrClosed
	case <-time.After(maxWait):
		return nil, nil
	}
}

func (f *fakeChannel) Drain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drains++
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	f.closeCalls++
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

func (f *fakeChannel) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.written.Bytes()...)
}

func (f *fakeChannel) counts() (writes, reads, closes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes, f.reads, f.closeCalls
}
