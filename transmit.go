package txrx

import "io"

// ReadPayload reads the whole upstream input into memory.
func ReadPayload(r io.Reader) ([]byte, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return buf, &IOError{Phase: PhaseInput, Err: err}
	}
	return buf, nil
}

// Send writes payload to ch, retrying short writes until everything is
// accepted. If ch implements Drainer, Send waits for the bytes to leave the
// transmit queue. On failure it returns how much was written so far.
func Send(ch Channel, payload []byte) (int, error) {
	written := 0
	for written < len(payload) {
		n, err := ch.Write(payload[written:])
		written += n
		if err != nil {
			return written, &IOError{Phase: PhaseWrite, Err: err}
		}
		if n == 0 {
			return written, &IOError{Phase: PhaseWrite, Err: io.ErrShortWrite}
		}
	}

	if d, ok := ch.(Drainer); ok && written > 0 {
		if err := d.Drain(); err != nil {
			return written, &IOError{Phase: PhaseWrite, Err: err}
		}
	}
	return written, nil
}
