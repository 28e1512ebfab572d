// Command txrx sends standard input to a serial port, waits for a reply and
// hex dumps the exchange to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	txrx "github.com/luhtfiimanal/go-serial-txrx"
)

const usage = `txrx - send data to a serial port and dump the reply

txrx sends standard input to a serial port using the given settings, listens
for a reply and hex dumps the exchange to stderr.

USAGE:
    txrx TTYDEV -b BAUDRATE [OPTIONS] [FLAGS]

FLAGS:
    -h, --help              Print this help and exit.
    -q, --quiet             Don't log to stderr. Errors are still printed.
    -s, --stdout            Write received bytes to stdout so they can be
                            piped or saved.

OPTIONS:
    -b, --baud BAUDRATE     Baud rate of the port. Mandatory.
    -c, --cfg CONFIG        Data bits, parity and stop bits, e.g. 8N1, 7E2.
                            Data bits: 5, 6, 7, 8. Parity: N (none), E (even).
                            Stop bits: 1, 2. Default 8N1.
    -t, --timeout TIMEOUT   Milliseconds to wait for a reply. Default 1000.

ARGS:
    <TTYDEV>                Serial device, e.g. /dev/ttyUSB0, /dev/ttyACM0.
`

// Exit codes.
const (
	exitOK     = 0
	exitIO     = 1
	exitUsage  = 2
	exitConfig = 3
	exitOpen   = 4
)

type options struct {
	device  string
	baud    string
	cfg     string
	timeout int
	quiet   bool
	stdout  bool
	help    bool
}

// parseArgs accepts TTYDEV before, after or between options.
func parseArgs(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("txrx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	for _, name := range []string{"b", "baud"} {
		fs.StringVar(&o.baud, name, "", "baud rate")
	}
	for _, name := range []string{"c", "cfg", "config"} {
		fs.StringVar(&o.cfg, name, txrx.DefaultLineConfig, "line config")
	}
	for _, name := range []string{"t", "timeout"} {
		fs.IntVar(&o.timeout, name, int(txrx.DefaultTimeout/time.Millisecond), "reply timeout in ms")
	}
	for _, name := range []string{"q", "quiet"} {
		fs.BoolVar(&o.quiet, name, false, "quiet")
	}
	for _, name := range []string{"s", "stdout"} {
		fs.BoolVar(&o.stdout, name, false, "received data to stdout")
	}
	for _, name := range []string{"h", "help"} {
		fs.BoolVar(&o.help, name, false, "help")
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				o.help = true
				return o, nil
			}
			return o, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if o.help {
		return o, nil
	}
	switch {
	case len(positional) == 0:
		return o, errors.New("missing TTYDEV")
	case len(positional) > 1:
		return o, fmt.Errorf("unexpected argument %q", positional[1])
	}
	o.device = positional[0]

	if o.baud == "" {
		return o, errors.New("missing -b/--baud")
	}
	if o.timeout < 0 {
		return o, fmt.Errorf("invalid timeout %d: must not be negative", o.timeout)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	errLog := log.New(stderr, "txrx: ", 0)

	o, err := parseArgs(args)
	if err != nil {
		errLog.Printf("%v (see --help)", err)
		return exitUsage
	}
	if o.help {
		fmt.Fprint(stderr, usage)
		return exitOK
	}

	pc, err := txrx.ParsePortConfig(o.device, o.baud, o.cfg)
	if err != nil {
		errLog.Print(err)
		return exitConfig
	}

	cfg := txrx.Config{
		Port:    pc,
		Timeout: time.Duration(o.timeout) * time.Millisecond,
		Output:  txrx.OutputMode{Quiet: o.quiet, Stdout: o.stdout},
	}
	session := txrx.NewSession(cfg, stderr, stdout)

	err = session.Run(ctx, stdin)
	if err == nil {
		return exitOK
	}
	errLog.Print(err)

	var openErr *txrx.OpenError
	if errors.As(err, &openErr) {
		return exitOpen
	}
	return exitIO
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	// After the first signal a second one gets the default behaviour.
	context.AfterFunc(ctx, stop)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
