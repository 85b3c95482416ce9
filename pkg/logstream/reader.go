package logstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/ssargent/actfast/pkg/codec"
)

// Reader provides sequential access to the records of a log.bin stream.
// It only knows about header and payload boundaries, never about record
// semantics.
type Reader struct {
	reader *bufio.Reader
	codec  *codec.RecordCodec
	offset int64
	record *codec.Record
	err    error
	done   bool
}

// NewReader creates a record reader over r
func NewReader(r io.Reader, config ReaderConfig) *Reader {
	var br *bufio.Reader
	if config.BufferSize > 0 {
		br = bufio.NewReaderSize(r, config.BufferSize)
	} else {
		br = bufio.NewReader(r)
	}

	return &Reader{
		reader: br,
		codec:  codec.NewRecordCodec(),
	}
}

// ReadNext reads the next record. It returns io.EOF when the stream ends
// cleanly on a record boundary and an ErrFraming error when it ends inside a
// record.
func (r *Reader) ReadNext() (*codec.Record, error) {
	start := r.offset

	header := make([]byte, codec.HeaderSize)
	n, err := io.ReadFull(r.reader, header)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short header at offset %d (%d of %d bytes)", ErrFraming, start, n, codec.HeaderSize)
		}
		return nil, ReadFailure(err)
	}

	h, err := r.codec.DecodeHeader(header)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, h.PayloadSize())
	n, err = io.ReadFull(r.reader, payload)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated %s payload at offset %d (%d of %d bytes)",
				ErrFraming, h.Type, start, n, h.PayloadSize())
		}
		return nil, ReadFailure(err)
	}

	return &codec.Record{Header: h, Payload: payload}, nil
}

// ReadFailure classifies an error from the underlying stream. A line that
// overflows a scanner buffer is a framing error, anything else (checksum,
// inflate or device errors) is an i/o error. nil passes through.
func ReadFailure(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrIO), errors.Is(err, ErrFraming):
		return err
	case errors.Is(err, bufio.ErrTooLong):
		return fmt.Errorf("%w: %w", ErrFraming, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// Offset returns the number of bytes consumed so far
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next advances to the next record. It returns false at end of stream or on
// the first error; check Err to tell them apart. The sequence cannot be
// restarted.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}

	r.record, r.err = r.ReadNext()
	if r.err != nil {
		r.done = true
		r.record = nil
		if errors.Is(r.err, io.EOF) {
			r.err = nil
		}
		return false
	}
	return true
}

// Record returns the record read by the last successful call to Next
func (r *Reader) Record() *codec.Record {
	return r.record
}

// Err returns the error that stopped iteration, or nil on a clean end of
// stream
func (r *Reader) Err() error {
	return r.err
}

var _ RecordIterator = (*Reader)(nil)
