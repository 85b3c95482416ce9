//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"testing"
)

// FuzzRecordCodec_RoundTrip tests encode/header-decode round-trip with random inputs
func FuzzRecordCodec_RoundTrip(f *testing.F) {
	codec := NewRecordCodec()

	f.Add(uint8(0x00), uint32(0), []byte(""))
	f.Add(uint8(0x05), uint32(1700000000), []byte{0x2A, 0x00})
	f.Add(uint8(0x15), uint32(1), []byte{0x01, 0x00, 0x0A, 0x00, 0x64, 0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, recordType uint8, timestamp uint32, body []byte) {
		if len(body) > MaxBodySize {
			t.Skip("body does not fit the length field")
		}

		encoded, err := codec.Encode(RecordType(recordType), timestamp, body)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		header, err := codec.DecodeHeader(encoded)
		if err != nil {
			t.Fatalf("DecodeHeader failed: %v", err)
		}

		if header.Type != RecordType(recordType) || header.Timestamp != timestamp {
			t.Errorf("header mismatch: %s", header)
		}

		record := Record{Header: header, Payload: encoded[HeaderSize:]}
		if !bytes.Equal(record.Body(), body) {
			t.Errorf("Body mismatch: got %x, want %x", record.Body(), body)
		}
		if !record.ChecksumValid() {
			t.Error("checksum of a freshly encoded record must be valid")
		}
	})
}

// FuzzRecordCodec_DecodeHeader ensures arbitrary bytes never panic
func FuzzRecordCodec_DecodeHeader(f *testing.F) {
	codec := NewRecordCodec()

	f.Add([]byte{})
	f.Add([]byte{0x1E, 0x00, 0, 0, 0, 0, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		header, err := codec.DecodeHeader(data)
		if len(data) < HeaderSize {
			if err == nil {
				t.Errorf("expected error for %d bytes", len(data))
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = header.String()
	})
}
