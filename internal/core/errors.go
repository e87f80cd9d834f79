package core

import (
	"errors"
	"fmt"

	"github.com/mikey-austin/tag_utopia/internal/codec"
	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/player"
)

// CLI exit codes.
const (
	ExitOK          = 0
	ExitRuntime     = 1
	ExitUsage       = 2
	ExitBusy        = 3
	ExitNotFound    = 4
	ExitUnsupported = 5
)

// ErrNotFound reports a path that is neither indexed nor readable.
var ErrNotFound = errors.New("track not found")

// ErrBatchInFlight reports a save or rename batch racing another.
var ErrBatchInFlight = errors.New("another batch is in flight")

// CLIError carries a user-visible message and exit code.
type CLIError struct {
	Code int
	Msg  string
	Err  error
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *CLIError) Unwrap() error { return e.Err }

// WrapError creates a CLIError with an underlying error.
func WrapError(code int, msg string, err error) *CLIError {
	return &CLIError{Code: code, Msg: msg, Err: err}
}

// ErrorFor maps domain errors onto CLI exit codes.
func ErrorFor(err error) *CLIError {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	var te *player.TransitionError
	switch {
	case errors.Is(err, ErrNotFound):
		return &CLIError{Code: ExitNotFound, Msg: err.Error()}
	case errors.Is(err, ErrBatchInFlight), errors.Is(err, library.ErrScanInFlight):
		return &CLIError{Code: ExitBusy, Msg: err.Error()}
	case codec.IsUnsupported(err):
		return &CLIError{Code: ExitUnsupported, Msg: err.Error()}
	case errors.As(err, &te):
		return &CLIError{Code: ExitUsage, Msg: err.Error()}
	}
	return &CLIError{Code: ExitRuntime, Msg: err.Error()}
}

// ExitCode returns the CLI exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ErrorFor(err).Code
}
