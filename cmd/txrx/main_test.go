package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want options
	}{
		{
			name: "device first",
			args: []string{"/dev/ttyUSB0", "-b", "9600"},
			want: options{device: "/dev/ttyUSB0", baud: "9600", cfg: "8N1", timeout: 1000},
		},
		{
			name: "long options after device",
			args: []string{"--baud", "115200", "/dev/ttyACM0", "--cfg", "7E2", "--timeout", "250", "--quiet", "--stdout"},
			want: options{device: "/dev/ttyACM0", baud: "115200", cfg: "7E2", timeout: 250, quiet: true, stdout: true},
		},
		{
			name: "short flags",
			args: []string{"-q", "-s", "/dev/ttyS1", "-b", "4800", "-c", "5N2", "-t", "0"},
			want: options{device: "/dev/ttyS1", baud: "4800", cfg: "5N2", timeout: 0, quiet: true, stdout: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseArgs(tc.args)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	for name, args := range map[string][]string{
		"no device":        {"-b", "9600"},
		"two devices":      {"/dev/a", "/dev/b", "-b", "9600"},
		"no baud":          {"/dev/ttyUSB0"},
		"negative timeout": {"/dev/ttyUSB0", "-b", "9600", "-t", "-5"},
		"bad timeout":      {"/dev/ttyUSB0", "-b", "9600", "-t", "soon"},
		"unknown flag":     {"/dev/ttyUSB0", "-b", "9600", "-x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseArgs(args)
			require.Error(t, err)
		})
	}
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader("AT\r\n"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Help(t *testing.T) {
	code, stdout, stderr := runCLI("--help")
	require.Equal(t, exitOK, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "USAGE:")
}

func TestRun_BadArguments(t *testing.T) {
	code, stdout, stderr := runCLI("/dev/ttyUSB0")
	require.Equal(t, exitUsage, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "missing -b/--baud")
}

func TestRun_ConfigErrorEvenWhenQuiet(t *testing.T) {
	code, stdout, stderr := runCLI("/dev/ttyUSB0", "-b", "9600", "-c", "8X1", "-q", "-s")
	require.Equal(t, exitConfig, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "parity")

	code, _, stderr = runCLI("/dev/ttyUSB0", "-b", "0")
	require.Equal(t, exitConfig, code)
	require.Contains(t, stderr, "baud")
}

func TestRun_OpenError(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "ttyGONE")
	code, stdout, stderr := runCLI(dev, "-b", "9600", "-q", "-s")
	require.Equal(t, exitOpen, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, dev)
}
