// Package txrx sends a buffer of bytes to a serial device, waits a bounded
// time for a reply and hands back whatever arrived.
//
// A session is strictly sequential: validate the line settings, open the
// device exclusively, write the payload, collect the reply until the receive
// window closes, then route it. Progress and hex dumps go to a diagnostic
// stream; the raw reply optionally goes to a separate data stream so it can
// be piped.
//
// On Linux the device is driven through raw termios and poll(2), with a
// self-pipe so Close from another goroutine (for example a signal handler)
// wakes a pending read. Other platforms use go.bug.st/serial.
//
// Example usage:
//
//	pc, err := txrx.ParsePortConfig("/dev/ttyUSB0", "9600", "8N1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ch, err := txrx.Open(pc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ch.Close()
//
//	if _, err := txrx.Send(ch, []byte("AT\r\n")); err != nil {
//	    log.Fatal(err)
//	}
//	rx, err := txrx.Collect(ch, time.Second)
//	if err != nil {
//	    log.Println("read error:", err)
//	}
//	fmt.Printf("%q (%s)\n", rx.Data, rx.Outcome)
package txrx
