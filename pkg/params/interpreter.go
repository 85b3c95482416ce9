package params

import (
	"encoding/binary"
	"errors"
)

const (
	// EntrySize is the size of one key/value entry in a Parameters record.
	EntrySize = 8

	// DefaultSampleRate is the rate in effect before any SampleRate entry.
	DefaultSampleRate uint32 = 30
)

// ErrNilConfig is returned when Interpret has no configuration to update.
var ErrNilConfig = errors.New("params: nil decode config")

// DecodeConfig is the mutable decode state of one log.bin stream. Updates
// apply to records decoded afterwards and never retroactively.
type DecodeConfig struct {
	SampleRate uint32 // Hz
}

// NewDecodeConfig returns the configuration in effect at the start of a stream
func NewDecodeConfig() *DecodeConfig {
	return &DecodeConfig{SampleRate: DefaultSampleRate}
}

// Entry is one decoded parameter
type Entry struct {
	AddressSpace uint16
	Identifier   uint16
	Type         ParameterType
	Value        uint32
}

// Name returns the parameter name used as the metadata key
func (e Entry) Name() string {
	return e.Type.String()
}

// Stats summarises one Parameters record
type Stats struct {
	Entries       int // complete 8-byte entries read
	Unknown       int // entries that resolved to Unknown
	TrailingBytes int // bytes left over after the last complete entry
}

// Interpret walks the 8-byte entries of a Parameters record body (checksum
// byte already removed). A SampleRate entry overwrites cfg.SampleRate. Every
// entry that resolves to a known parameter is passed to emit; the two effects
// are independent. Emit may be nil.
func Interpret(body []byte, cfg *DecodeConfig, emit func(Entry) error) (Stats, error) {
	if cfg == nil {
		return Stats{}, ErrNilConfig
	}

	var stats Stats
	for offset := 0; offset+EntrySize <= len(body); offset += EntrySize {
		key := binary.LittleEndian.Uint32(body[offset:])
		entry := Entry{
			Identifier:   uint16(key >> 16),
			AddressSpace: uint16(key & 0xFFFF),
			Value:        binary.LittleEndian.Uint32(body[offset+4:]),
		}
		entry.Type = Lookup(entry.AddressSpace, entry.Identifier)
		stats.Entries++

		if entry.Type == SampleRate {
			cfg.SampleRate = entry.Value
		}

		if entry.Type == Unknown {
			stats.Unknown++
			continue
		}
		if emit != nil {
			if err := emit(entry); err != nil {
				return stats, err
			}
		}
	}
	stats.TrailingBytes = len(body) % EntrySize

	return stats, nil
}

// EncodeEntry builds the 8-byte wire form of a parameter entry
func EncodeEntry(addressSpace, identifier uint16, value uint32) []byte {
	buf := make([]byte, EntrySize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(identifier)<<16|uint32(addressSpace))
	binary.LittleEndian.PutUint32(buf[4:], value)
	return buf
}
