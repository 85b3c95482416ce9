package logstream

import "github.com/ssargent/actfast/pkg/codec"

// ReaderConfig holds configuration for the record reader
type ReaderConfig struct {
	BufferSize int // Read buffer size, 0 selects the bufio default
}

// WriterConfig holds configuration for the record writer
type WriterConfig struct {
	BufferSize int // Write buffer size, 0 selects the bufio default
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *codec.Record
	Err() error
}

// Errors
var (
	ErrFraming = &StreamError{"record framing error"}
	ErrIO      = &StreamError{"container i/o error"}
)

// StreamError represents a record stream error
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}
