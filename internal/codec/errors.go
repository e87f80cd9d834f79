package codec

import (
	"errors"
	"fmt"
)

// UnsupportedFormatError reports a file no codec can handle, or an
// operation a codec does not support for its format.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: unsupported format", e.Path)
	}
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptTagError reports a recognized file whose tag data cannot be parsed.
type CorruptTagError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptTagError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: corrupt tag: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: corrupt tag: %s", e.Path, e.Reason)
}

func (e *CorruptTagError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure while reading or writing tags.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsUnsupported reports whether err is an UnsupportedFormatError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedFormatError
	return errors.As(err, &ue)
}

// IsCorrupt reports whether err is a CorruptTagError.
func IsCorrupt(err error) bool {
	var ce *CorruptTagError
	return errors.As(err, &ce)
}
