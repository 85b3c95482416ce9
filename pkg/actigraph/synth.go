package actigraph

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"

	"github.com/ssargent/actfast/pkg/bitreader"
	"github.com/ssargent/actfast/pkg/codec"
	"github.com/ssargent/actfast/pkg/logstream"
	"github.com/ssargent/actfast/pkg/params"
)

// Sample is one raw accelerometer reading in device counts
type Sample struct {
	X, Y, Z int16
}

// EncodeActivity packs samples into an Activity body in wire order y, x, z.
// Counts must fit in 12 signed bits.
func EncodeActivity(samples []Sample) ([]byte, error) {
	w := bitreader.NewWriter()
	for i, s := range samples {
		for _, v := range []int16{s.Y, s.X, s.Z} {
			if err := w.WriteSigned(int64(v), fieldWidth); err != nil {
				return nil, errors.Wrapf(err, "sample %d", i)
			}
		}
	}
	return w.Bytes(), nil
}

// SynthOptions describe a synthetic recording
type SynthOptions struct {
	Start      uint32            // Unix seconds of the first record
	SampleRate uint32            // written as a SampleRate parameter
	Seconds    int               // one Activity record per second
	Info       map[string]string // info.txt lines
	Lux        bool              // add one Lux record per second
}

// LogBuilder appends records to an in-memory log.bin
type LogBuilder struct {
	buf    bytes.Buffer
	writer *logstream.Writer
}

// NewLogBuilder creates an empty log
func NewLogBuilder() *LogBuilder {
	b := &LogBuilder{}
	b.writer = logstream.NewWriter(&b.buf, logstream.WriterConfig{})
	return b
}

// Parameters appends a Parameters record
func (b *LogBuilder) Parameters(ts uint32, entries ...[]byte) error {
	_, err := b.writer.Append(codec.RecordParameters, ts, bytes.Join(entries, nil))
	return err
}

// Activity appends an Activity record
func (b *LogBuilder) Activity(ts uint32, samples []Sample) error {
	body, err := EncodeActivity(samples)
	if err != nil {
		return err
	}
	_, err = b.writer.Append(codec.RecordActivity, ts, body)
	return err
}

// Record appends a record with an arbitrary body
func (b *LogBuilder) Record(t codec.RecordType, ts uint32, body []byte) error {
	_, err := b.writer.Append(t, ts, body)
	return err
}

// Bytes flushes and returns the log contents
func (b *LogBuilder) Bytes() ([]byte, error) {
	if err := b.writer.Flush(); err != nil {
		return nil, err
	}
	return b.buf.Bytes(), nil
}

// WriteArchive writes a GT3X zip holding info.txt and log.bin
func WriteArchive(w io.Writer, info map[string]string, log []byte) error {
	zw := zip.NewWriter(w)

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := zw.Create(InfoFileName)
	if err != nil {
		return errors.Wrap(err, "create "+InfoFileName)
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(f, "%s: %s\r\n", k, info[k]); err != nil {
			return err
		}
	}

	f, err = zw.Create(LogFileName)
	if err != nil {
		return errors.Wrap(err, "create "+LogFileName)
	}
	if _, err := f.Write(log); err != nil {
		return err
	}
	return zw.Close()
}

// Synthesize writes a recording with a slow sine wave on each axis
func Synthesize(w io.Writer, opts SynthOptions) error {
	if opts.SampleRate == 0 {
		opts.SampleRate = params.DefaultSampleRate
	}

	b := NewLogBuilder()
	if err := b.Parameters(opts.Start, params.EncodeEntry(params.AddressSpaceFlash, 10, opts.SampleRate)); err != nil {
		return err
	}

	rate := int(opts.SampleRate)
	for sec := 0; sec < opts.Seconds; sec++ {
		ts := opts.Start + uint32(sec)
		samples := make([]Sample, rate)
		for i := range samples {
			phase := 2 * math.Pi * float64(sec*rate+i) / float64(rate*10)
			samples[i] = Sample{
				X: int16(math.Round(math.Sin(phase) * 256)),
				Y: int16(math.Round(math.Cos(phase) * 256)),
				Z: 256,
			}
		}
		if err := b.Activity(ts, samples); err != nil {
			return err
		}
		if opts.Lux {
			if err := b.Record(codec.RecordLux, ts, []byte{byte(sec), 0}); err != nil {
				return err
			}
		}
	}

	log, err := b.Bytes()
	if err != nil {
		return err
	}
	return WriteArchive(w, opts.Info, log)
}
