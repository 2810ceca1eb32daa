package source

import (
	"fmt"
)

// ErrUnsupportedFormat indicates a file extension no reader handles.
type ErrUnsupportedFormat struct {
	Path string
	Ext  string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported source format %q: %s", e.Ext, e.Path)
}

// ErrRecord indicates one source record that was not loaded. The rest of
// the file is still read.
type ErrRecord struct {
	Record int // Zero-based position in the file
	Reason string
	Err    error
}

func (e *ErrRecord) Error() string {
	msg := fmt.Sprintf("record %d: %s", e.Record, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrRecord) Unwrap() error {
	return e.Err
}
