// Package reader detects the format of a recording and dispatches it to the
// matching decoder.
package reader

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ssargent/actfast/pkg/actigraph"
	"github.com/ssargent/actfast/pkg/geneactiv"
	"github.com/ssargent/actfast/pkg/logstream"
	"github.com/ssargent/actfast/pkg/metrics"
	"github.com/ssargent/actfast/pkg/sensors"
)

// Format identifies a recording format
type Format int

// Known formats
const (
	FormatUnknown Format = iota
	FormatGT3X
	FormatGeneActiv
	FormatAxivity
)

func (f Format) String() string {
	switch f {
	case FormatGT3X:
		return actigraph.FormatName
	case FormatGeneActiv:
		return geneactiv.FormatName
	case FormatAxivity:
		return "Axivity CWA"
	}
	return "Unknown"
}

var (
	// ErrUnsupportedFormat is returned for recognised formats without a
	// decoder and for unrecognised input.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrIO wraps failures to open or read the container, including
	// checksum and inflate errors in archive members.
	ErrIO error = logstream.ErrIO
)

var magics = []struct {
	prefix []byte
	format Format
}{
	{[]byte("PK\x03\x04"), FormatGT3X},
	{[]byte("Devi"), FormatGeneActiv},
	{[]byte("MD"), FormatAxivity},
}

// SniffSize is the number of leading bytes Sniff needs
const SniffSize = 4

// Sniff identifies a format from the first bytes of a file
func Sniff(head []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.prefix) {
			return m.format
		}
	}
	return FormatUnknown
}

// Options configure decoding
type Options struct {
	Logger   *zap.Logger
	Recorder metrics.Recorder
	// Strict makes records or pages with an unusable sample rate fatal.
	Strict bool
	// HexPages hex-decodes GENEActiv sample lines.
	HexPages bool
}

func ioError(op string, err error) error {
	return errors.Wrap(logstream.ReadFailure(err), op)
}

// Decode sniffs r and decodes it into sink
func Decode(r io.ReaderAt, size int64, sink sensors.Sink, opts Options) (Format, error) {
	head := make([]byte, SniffSize)
	n, err := r.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return FormatUnknown, ioError("read header", err)
	}

	format := Sniff(head[:n])
	switch format {
	case FormatGT3X:
		zr, err := zip.NewReader(r, size)
		if err != nil {
			return format, ioError("open archive", err)
		}
		dec := actigraph.NewDecoder(opts.Logger, opts.Recorder, actigraph.Options{Strict: opts.Strict})
		_, err = dec.DecodeArchive(zr, sink)
		return format, err

	case FormatGeneActiv:
		dec := geneactiv.NewDecoder(opts.Logger, opts.Recorder, geneactiv.Options{
			Strict:   opts.Strict,
			HexPages: opts.HexPages,
		})
		_, err := dec.Decode(io.NewSectionReader(r, 0, size), sink)
		return format, err

	case FormatAxivity:
		return format, errors.Wrap(ErrUnsupportedFormat, format.String())
	}
	return format, ErrUnsupportedFormat
}

// Open decodes the file at path into sink. The file is closed on every
// return path.
func Open(path string, sink sensors.Sink, opts Options) (format Format, err error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, ioError("open", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, ioError("close", cerr))
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return FormatUnknown, ioError("stat", err)
	}
	return Decode(f, info.Size(), sink, opts)
}

// DecodeFile decodes path into an in-memory result
func DecodeFile(path string, opts Options) (*sensors.Result, error) {
	c := sensors.NewCollector("")
	format, err := Open(path, c, opts)
	if err != nil {
		return nil, err
	}
	res := c.Result()
	res.Format = format.String()
	return res, nil
}

// DecodeBytes decodes an in-memory recording into a result
func DecodeBytes(data []byte, opts Options) (*sensors.Result, error) {
	c := sensors.NewCollector("")
	format, err := Decode(bytes.NewReader(data), int64(len(data)), c, opts)
	if err != nil {
		return nil, err
	}
	res := c.Result()
	res.Format = format.String()
	return res, nil
}
