package txrx

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by a Channel that has been closed, including when
// Close is called while a read is waiting.
var ErrClosed = errors.New("serial channel closed")

// ConfigError reports a line setting that failed validation.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// OpenErrorKind classifies why a device could not be opened.
type OpenErrorKind int

const (
	OpenUnknown OpenErrorKind = iota
	NotFound
	PermissionDenied
	Busy
	NotATerminal
	UnsupportedConfig
)

func (k OpenErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	case Busy:
		return "busy"
	case NotATerminal:
		return "not a terminal"
	case UnsupportedConfig:
		return "unsupported config"
	default:
		return "open failed"
	}
}

// OpenError reports a failure to open or configure a device.
type OpenError struct {
	Path string
	Kind OpenErrorKind
	Err  error
}

func (e *OpenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("open %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("open %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Phase names the stage of a session an IOError happened in.
type Phase string

const (
	PhaseInput  Phase = "input"
	PhaseWrite  Phase = "write"
	PhaseRead   Phase = "read"
	PhaseOutput Phase = "output"
)

// IOError reports a failed transfer.
type IOError struct {
	Phase Phase
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
