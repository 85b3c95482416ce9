package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	// HeaderSize is the size of the fixed record header in bytes.
	HeaderSize = 8

	// Separator is the byte every record header starts with.
	Separator = 0x1E

	// MaxBodySize is the largest payload the 16-bit length field can describe.
	MaxBodySize = math.MaxUint16
)

// RecordHeader is the fixed header that prefixes every log.bin record
type RecordHeader struct {
	Separator  byte       // Must be 0x1E on a well-formed stream
	Type       RecordType // Record type code
	Timestamp  uint32     // Unix seconds, the record base time
	RecordSize uint16     // Payload length, excluding the trailing checksum byte
}

// Record is a header plus its payload. Payload includes the trailing
// checksum byte.
type Record struct {
	Header  RecordHeader
	Payload []byte
}

// RecordCodec handles serialization and deserialization of log.bin records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// DecodeHeader parses the 8 header bytes
// Format: [Separator(1)][Type(1)][Timestamp(4)][RecordSize(2)]
func (c *RecordCodec) DecodeHeader(data []byte) (RecordHeader, error) {
	if len(data) < HeaderSize {
		return RecordHeader{}, fmt.Errorf("data too short for record header: %d < %d", len(data), HeaderSize)
	}

	return RecordHeader{
		Separator:  data[0],
		Type:       RecordType(data[1]),
		Timestamp:  binary.LittleEndian.Uint32(data[2:6]),
		RecordSize: binary.LittleEndian.Uint16(data[6:8]),
	}, nil
}

// Encode serializes a record of the given type, appending the checksum byte.
func (c *RecordCodec) Encode(recordType RecordType, timestamp uint32, body []byte) ([]byte, error) {
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("record body too large: %d > %d", len(body), MaxBodySize)
	}

	buf := make([]byte, HeaderSize+len(body)+1)
	buf[0] = Separator
	buf[1] = byte(recordType)
	binary.LittleEndian.PutUint32(buf[2:], timestamp)
	binary.LittleEndian.PutUint16(buf[6:], uint16(len(body)))
	copy(buf[HeaderSize:], body)
	buf[len(buf)-1] = checksum(buf[:len(buf)-1])

	return buf, nil
}

// Valid reports whether the separator byte is the expected 0x1E.
func (h RecordHeader) Valid() bool {
	return h.Separator == Separator
}

// Time returns the record base time at whole-second resolution.
func (h RecordHeader) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0).UTC()
}

// PayloadSize is the number of bytes that follow the header on the wire.
func (h RecordHeader) PayloadSize() int {
	return int(h.RecordSize) + 1
}

func (h RecordHeader) String() string {
	return fmt.Sprintf("Separator: %x Record Type: %s Timestamp: %s Record Size: %d",
		h.Separator, h.Type, h.Time().Format(time.RFC3339), h.RecordSize)
}

// Body returns the payload without the trailing checksum byte.
func (r *Record) Body() []byte {
	if len(r.Payload) == 0 {
		return r.Payload
	}
	return r.Payload[:len(r.Payload)-1]
}

// Checksum returns the trailing checksum byte as stored on the wire.
func (r *Record) Checksum() byte {
	if len(r.Payload) == 0 {
		return 0
	}
	return r.Payload[len(r.Payload)-1]
}

// ChecksumValid recomputes the checksum over header and body. Decoding never
// depends on it; it is reported by inspection tooling only.
func (r *Record) ChecksumValid() bool {
	var hdr [HeaderSize]byte
	hdr[0] = r.Header.Separator
	hdr[1] = byte(r.Header.Type)
	binary.LittleEndian.PutUint32(hdr[2:], r.Header.Timestamp)
	binary.LittleEndian.PutUint16(hdr[6:], r.Header.RecordSize)

	return ^(xorBytes(hdr[:]) ^ xorBytes(r.Body())) == r.Checksum()
}

// checksum is the one's complement of the xor of every byte.
func checksum(data []byte) byte {
	return ^xorBytes(data)
}

func xorBytes(data []byte) byte {
	var x byte
	for _, b := range data {
		x ^= b
	}
	return x
}
