package txrx

import (
	"encoding/hex"
	"io"
	"log"
	"strings"
	"time"
)

// Router sends session progress to the diagnostic stream and received bytes
// to the data stream. Raw reply bytes only ever go to the data sink; the
// diagnostic sink only ever gets text and hex dumps.
type Router struct {
	diag *log.Logger
	data io.Writer
	mode OutputMode
}

// NewRouter builds a Router over the two sinks. diag is discarded when
// mode.Quiet is set and data is never written unless mode.Stdout is set.
func NewRouter(diag, data io.Writer, mode OutputMode) *Router {
	if mode.Quiet || diag == nil {
		diag = io.Discard
	}
	if data == nil {
		data = io.Discard
	}
	return &Router{diag: log.New(diag, "", 0), data: data, mode: mode}
}

// Opened reports the device and line settings.
func (r *Router) Opened(cfg PortConfig) {
	r.diag.Printf("tty: %s", cfg.Device)
	r.diag.Printf("baud: %d", cfg.BaudRate)
	r.diag.Printf("cfg: %s", cfg.LineConfig())
}

// Sent reports the transmitted payload.
func (r *Router) Sent(payload []byte) {
	r.diag.Printf("sent %d bytes:", len(payload))
	r.dump(payload)
}

// Waiting reports the start of the receive window.
func (r *Router) Waiting(window time.Duration) {
	r.diag.Printf("waiting for %d ms to complete read...", window.Milliseconds())
}

// Route emits a finished reception: a summary and hex dump on the diagnostic
// stream, and the raw bytes on the data stream if enabled.
func (r *Router) Route(rx Reception) error {
	r.diag.Printf("received %d bytes (%s after %d ms):", len(rx.Data), rx.Outcome, rx.Elapsed.Milliseconds())
	r.dump(rx.Data)

	if !r.mode.Stdout || len(rx.Data) == 0 {
		return nil
	}
	if _, err := r.data.Write(rx.Data); err != nil {
		return &IOError{Phase: PhaseOutput, Err: err}
	}
	return nil
}

func (r *Router) dump(b []byte) {
	if len(b) == 0 {
		return
	}
	r.diag.Print(strings.TrimRight(hex.Dump(b), "\n"))
}
