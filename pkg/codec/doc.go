// Package codec provides record header decoding and encoding for GT3X log.bin
// streams.
//
// A log.bin file is a flat sequence of event records. Every record starts with
// a fixed 8-byte header followed by a variable-length payload and a single
// trailing checksum byte.
//
// # Record Format
//
//	[Separator(1)][Type(1)][Timestamp(4)][RecordSize(2)][Payload(RecordSize)][Checksum(1)]
//
// Fields:
//   - Separator: always 0x1E on a well-formed stream
//   - Type: record type code, see RecordType
//   - Timestamp: 32-bit Unix time in seconds (little-endian), the base time of
//     every sample carried by the record
//   - RecordSize: 16-bit payload length (little-endian), excluding the checksum
//   - Checksum: one's complement of the xor of all header and payload bytes
//
// # Error Handling
//
// A wrong separator is not a decode error. The header is still returned and
// the caller decides whether to report it; RecordSize is trusted for framing
// because a misaligned stream cannot be resynchronised byte by byte. The
// checksum is carried on Record and is never enforced during decoding.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	raw, err := c.Encode(codec.RecordLux, 1700000000, []byte{0x2A, 0x00})
//	if err != nil {
//	    return err
//	}
//
//	header, err := c.DecodeHeader(raw)
//	if err != nil {
//	    return err
//	}
//	if !header.Valid() {
//	    // report and keep going
//	}
package codec
