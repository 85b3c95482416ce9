package bitreader

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned when a value does not fit in the requested width.
var ErrOverflow = errors.New("bitreader: value does not fit in field")

// Writer packs fields MSB-first into a growing buffer, the inverse of Reader.
type Writer struct {
	buf []byte
	pos uint64
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteUnsigned appends the low n bits of v.
func (w *Writer) WriteUnsigned(v uint64, n uint) error {
	if n > MaxFieldWidth {
		return fmt.Errorf("%w: %d", ErrFieldWidth, n)
	}
	if n < MaxFieldWidth && v>>n != 0 {
		return fmt.Errorf("%w: %d in %d bits", ErrOverflow, v, n)
	}

	for i := int(n) - 1; i >= 0; i-- {
		if w.pos%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v&(1<<uint(i)) != 0 {
			w.buf[w.pos/8] |= 0x80 >> (w.pos % 8)
		}
		w.pos++
	}
	return nil
}

// WriteSigned appends v as an n-bit two's-complement field.
func (w *Writer) WriteSigned(v int64, n uint) error {
	if n == 0 || n > MaxFieldWidth {
		return fmt.Errorf("%w: %d", ErrFieldWidth, n)
	}
	if n < MaxFieldWidth {
		lo, hi := -(int64(1) << (n - 1)), int64(1)<<(n-1)-1
		if v < lo || v > hi {
			return fmt.Errorf("%w: %d in %d bits", ErrOverflow, v, n)
		}
		return w.WriteUnsigned(uint64(v)&(1<<n-1), n)
	}
	return w.WriteUnsigned(uint64(v), n)
}

// WriteBool appends a single bit.
func (w *Writer) WriteBool(b bool) error {
	if b {
		return w.WriteUnsigned(1, 1)
	}
	return w.WriteUnsigned(0, 1)
}

// Len returns the number of bits written.
func (w *Writer) Len() uint64 {
	return w.pos
}

// Bytes returns the packed buffer. A trailing partial byte is zero padded.
func (w *Writer) Bytes() []byte {
	return w.buf
}
