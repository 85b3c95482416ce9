package bitreader

import (
	"errors"
	"fmt"
)

// MaxFieldWidth is the widest field a single read can return.
const MaxFieldWidth = 64

var (
	// ErrExhausted is returned when fewer bits remain than were requested.
	ErrExhausted = errors.New("bitreader: not enough bits remaining")

	// ErrFieldWidth is returned for reads wider than MaxFieldWidth.
	ErrFieldWidth = errors.New("bitreader: field width out of range")
)

// Reader is a cursor over a byte buffer that yields fixed-width fields,
// most significant bit first.
type Reader struct {
	buf []byte
	pos uint64 // bit position
}

// New creates a reader positioned at the first bit of buf. The buffer is
// not copied.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Position returns the number of bits consumed so far.
func (r *Reader) Position() uint64 {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() uint64 {
	return uint64(len(r.buf))*8 - r.pos
}

// ReadUnsigned reads the next n bits as an unsigned integer. On error the
// cursor does not move.
func (r *Reader) ReadUnsigned(n uint) (uint64, error) {
	if n > MaxFieldWidth {
		return 0, fmt.Errorf("%w: %d", ErrFieldWidth, n)
	}
	if r.Remaining() < uint64(n) {
		return 0, ErrExhausted
	}

	var v uint64
	for n > 0 {
		bitOff := uint(r.pos % 8)
		avail := 8 - bitOff
		take := avail
		if n < take {
			take = n
		}

		chunk := (uint64(r.buf[r.pos/8]) >> (avail - take)) & (1<<take - 1)
		v = v<<take | chunk

		r.pos += uint64(take)
		n -= take
	}

	return v, nil
}

// ReadSigned reads the next n bits as a two's-complement signed integer.
func (r *Reader) ReadSigned(n uint) (int64, error) {
	v, err := r.ReadUnsigned(n)
	if err != nil {
		return 0, err
	}
	if n == 0 || n == MaxFieldWidth {
		return int64(v), nil
	}
	if v&(1<<(n-1)) != 0 {
		return int64(v) - int64(1)<<n, nil
	}
	return int64(v), nil
}

// ReadBool reads a single bit.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUnsigned(1)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// Skip advances the cursor by n bits without reading them.
func (r *Reader) Skip(n uint64) error {
	if r.Remaining() < n {
		return ErrExhausted
	}
	r.pos += n
	return nil
}
