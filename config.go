package txrx

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultLineConfig is used when no cfg string is given.
const DefaultLineConfig = "8N1"

// DefaultTimeout is the receive window used when none is given.
const DefaultTimeout = 1000 * time.Millisecond

// Parity selects the parity bit mode of the line.
type Parity byte

const (
	ParityNone Parity = 'N'
	ParityEven Parity = 'E'
)

// StopBits is the number of stop bits per character.
type StopBits int

const (
	OneStopBit  StopBits = 1
	TwoStopBits StopBits = 2
)

// PortConfig holds validated line settings for one device.
// Use ParsePortConfig to build one; the zero value is not valid.
type PortConfig struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   Parity
	StopBits StopBits
}

// ParsePortConfig validates the device path, baud rate and three character
// line config (e.g. "8N1", "7E2"). An empty cfg means DefaultLineConfig.
// Nothing is touched on disk.
func ParsePortConfig(device, baud, cfg string) (PortConfig, error) {
	var pc PortConfig

	if strings.TrimSpace(device) == "" {
		return pc, &ConfigError{Field: "device", Value: device, Reason: "path is empty"}
	}
	pc.Device = device

	rate, err := strconv.Atoi(strings.TrimSpace(baud))
	if err != nil {
		return pc, &ConfigError{Field: "baud", Value: baud, Reason: "not an integer"}
	}
	if rate <= 0 {
		return pc, &ConfigError{Field: "baud", Value: baud, Reason: "must be positive"}
	}
	pc.BaudRate = rate

	if cfg == "" {
		cfg = DefaultLineConfig
	}
	if len(cfg) != 3 {
		return pc, &ConfigError{Field: "cfg", Value: cfg, Reason: "must be exactly three characters"}
	}

	switch cfg[0] {
	case '5', '6', '7', '8':
		pc.DataBits = int(cfg[0] - '0')
	default:
		return pc, &ConfigError{Field: "data bits", Value: cfg[0:1], Reason: "permitted values are 5, 6, 7, 8"}
	}

	switch p := Parity(cfg[1]); p {
	case ParityNone, ParityEven:
		pc.Parity = p
	default:
		return pc, &ConfigError{Field: "parity", Value: cfg[1:2], Reason: "permitted values are N, E"}
	}

	switch cfg[2] {
	case '1':
		pc.StopBits = OneStopBit
	case '2':
		pc.StopBits = TwoStopBits
	default:
		return pc, &ConfigError{Field: "stop bits", Value: cfg[2:3], Reason: "permitted values are 1, 2"}
	}

	return pc, nil
}

// LineConfig renders the settings back into the three character form.
func (c PortConfig) LineConfig() string {
	return fmt.Sprintf("%d%c%d", c.DataBits, c.Parity, c.StopBits)
}

func (c PortConfig) String() string {
	return fmt.Sprintf("%s@%d/%s", c.Device, c.BaudRate, c.LineConfig())
}

// OutputMode selects where received bytes go.
type OutputMode struct {
	Quiet  bool // no diagnostic stream
	Stdout bool // raw reply bytes to the primary output
}

// Config is everything a Session needs, built once at startup.
type Config struct {
	Port    PortConfig
	Timeout time.Duration
	Output  OutputMode
}
