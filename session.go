package txrx

import (
	"context"
	"io"
)

// Session runs one open, transmit, receive, output cycle.
type Session struct {
	Config Config
	Router *Router
	// Open defaults to the package Open.
	Open Opener
}

// NewSession builds a Session whose Router writes diagnostics to diag and
// the raw reply to data, as selected by cfg.Output.
func NewSession(cfg Config, diag, data io.Writer) *Session {
	return &Session{Config: cfg, Router: NewRouter(diag, data, cfg.Output), Open: Open}
}

// Run opens the device, sends everything read from in, collects the reply
// for the configured timeout and routes it. The channel is closed on every
// return path. Cancelling ctx closes the channel, which ends a pending
// receive with whatever was collected so far.
//
// A read error is returned only after the partial reply has been routed.
//
// If ctx is done while in is still being read, Run returns without waiting
// for the read; in may still be read by a background goroutine after Run
// returns, until it reaches EOF or fails.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	open := s.Open
	if open == nil {
		open = Open
	}
	timeout := s.Config.Timeout
	if timeout < 0 {
		timeout = 0
	}

	ch, err := open(s.Config.Port)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ch.Close(); cerr != nil {
			Logf("txrx: close %s: %v", s.Config.Port.Device, cerr)
		}
	}()
	stop := context.AfterFunc(ctx, func() { ch.Close() })
	defer stop()

	s.Router.Opened(s.Config.Port)

	payload, err := readPayload(ctx, in)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := Send(ch, payload); err != nil {
		return err
	}
	s.Router.Sent(payload)
	s.Router.Waiting(timeout)

	rx, rerr := Collect(ch, timeout)
	if err := s.Router.Route(rx); err != nil && rerr == nil {
		return err
	}
	return rerr
}

// readPayload is ReadPayload that gives up when ctx is done, so an interrupt
// while stdin is still open does not hang the session.
func readPayload(ctx context.Context, in io.Reader) ([]byte, error) {
	type result struct {
		b   []byte
		err error
	}
	res := make(chan result, 1)
	go func() {
		b, err := ReadPayload(in)
		res <- result{b, err}
	}()

	select {
	case r := <-res:
		return r.b, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
