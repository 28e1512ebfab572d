//go:build linux

package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

func TestRun_PTYExchange(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 4)
		if _, err := io.ReadFull(master, buf); err != nil {
			got <- err.Error()
			return
		}
		got <- string(buf)
		master.Write([]byte{0x06, 'O', 'K', 0x00, 0xff})
	}()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{slave.Name(), "-b", "9600", "-t", "300", "-q", "-s"},
		strings.NewReader("AT\r\n"), &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	require.Equal(t, "AT\r\n", <-got)
	require.Equal(t, []byte{0x06, 'O', 'K', 0x00, 0xff}, stdout.Bytes())
	require.Empty(t, stderr.String())
}

func TestRun_PTYDiagnostics(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{slave.Name(), "-b", "9600", "-t", "100"},
		strings.NewReader("ping"), &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "sent 4 bytes")
	require.Contains(t, stderr.String(), "received 0 bytes (timeout expired")
}
