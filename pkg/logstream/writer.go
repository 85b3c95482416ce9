package logstream

import (
	"bufio"
	"io"

	"github.com/ssargent/actfast/pkg/codec"
)

// Writer frames records onto an io.Writer in log.bin layout
type Writer struct {
	writer *bufio.Writer
	codec  *codec.RecordCodec
	offset int64
}

// NewWriter creates a record writer over w
func NewWriter(w io.Writer, config WriterConfig) *Writer {
	var bw *bufio.Writer
	if config.BufferSize > 0 {
		bw = bufio.NewWriterSize(w, config.BufferSize)
	} else {
		bw = bufio.NewWriter(w)
	}

	return &Writer{
		writer: bw,
		codec:  codec.NewRecordCodec(),
	}
}

// Append encodes and buffers a record and returns the offset it starts at
func (w *Writer) Append(recordType codec.RecordType, timestamp uint32, body []byte) (int64, error) {
	data, err := w.codec.Encode(recordType, timestamp, body)
	if err != nil {
		return 0, err
	}

	n, err := w.writer.Write(data)
	if err != nil {
		return 0, err
	}

	recordOffset := w.offset
	w.offset += int64(n)

	return recordOffset, nil
}

// WriteRaw writes bytes verbatim. It exists to produce deliberately
// malformed streams.
func (w *Writer) WriteRaw(data []byte) error {
	n, err := w.writer.Write(data)
	w.offset += int64(n)
	return err
}

// Flush writes any buffered data to the underlying writer
func (w *Writer) Flush() error {
	return w.writer.Flush()
}

// Size returns the number of bytes written so far
func (w *Writer) Size() int64 {
	return w.offset
}
