package txrx

import (
	"errors"
	"io"
	"time"
)

// Outcome says why a receive window ended.
type Outcome int

const (
	// TimedOut means the whole window elapsed. This is the normal ending,
	// with or without data.
	TimedOut Outcome = iota
	// EndOfStream means the device signalled end of stream before the
	// window elapsed. Treated as success.
	EndOfStream
	// Interrupted means the channel was closed under the read, usually by a
	// signal.
	Interrupted
	// Failed means a read error cut the window short.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case TimedOut:
		return "timeout expired"
	case EndOfStream:
		return "end of stream"
	case Interrupted:
		return "interrupted"
	case Failed:
		return "read failed"
	default:
		return "unknown"
	}
}

// Reception is what one receive window collected.
type Reception struct {
	Data    []byte
	Outcome Outcome
	Elapsed time.Duration
}

// Collect reads from ch until window has elapsed since the call or the
// device ends the stream. Each read is bounded by the time left, so Collect
// overshoots the window by at most one read bound. A read error stops
// collection early; bytes already read are still returned alongside the
// *IOError.
func Collect(ch Channel, window time.Duration) (Reception, error) {
	start := time.Now()
	deadline := start.Add(window)
	var rx Reception

	for {
		remaining := deadline.Sub(time.Now())
		if remaining <= 0 {
			rx.Outcome = TimedOut
			break
		}

		chunk, err := ch.ReadAvailable(remaining)
		rx.Data = append(rx.Data, chunk...)
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			rx.Outcome = EndOfStream
		case errors.Is(err, ErrClosed):
			rx.Outcome = Interrupted
		default:
			rx.Outcome = Failed
		}
		rx.Elapsed = time.Now().Sub(start)
		if rx.Outcome == EndOfStream {
			return rx, nil
		}
		return rx, &IOError{Phase: PhaseRead, Err: err}
	}

	rx.Elapsed = time.Now().Sub(start)
	return rx, nil
}
