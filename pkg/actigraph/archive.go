package actigraph

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/ssargent/actfast/pkg/logstream"
	"github.com/ssargent/actfast/pkg/sensors"
)

// Archive member names
const (
	LogFileName  = "log.bin"
	InfoFileName = "info.txt"
)

// ErrMissingLog is returned when an archive has no log.bin member
var ErrMissingLog = errors.New("actigraph: archive has no " + LogFileName)

// DecodeArchive decodes an opened GT3X archive: info.txt lines (when
// present) become metadata, then log.bin is decoded.
func (d *Decoder) DecodeArchive(zr *zip.Reader, sink sensors.Sink) (stats Stats, err error) {
	if info := findMember(zr, InfoFileName); info != nil {
		if err := readMember(info, func(r io.Reader) error { return ParseInfo(r, sink) }); err != nil {
			return stats, errors.Wrap(err, "read "+InfoFileName)
		}
	}

	log := findMember(zr, LogFileName)
	if log == nil {
		return stats, ErrMissingLog
	}
	err = readMember(log, func(r io.Reader) error {
		var derr error
		stats, derr = d.Decode(r, sink)
		return derr
	})
	return stats, err
}

func findMember(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readMember(f *zip.File, fn func(io.Reader) error) (err error) {
	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(logstream.ReadFailure(err), "open %s", f.Name)
	}
	defer func() {
		err = multierr.Append(err, logstream.ReadFailure(rc.Close()))
	}()
	return fn(rc)
}

// ParseInfo emits every "Key: Value" line of info.txt as metadata in the
// info category. Other lines are ignored.
func ParseInfo(r io.Reader, sink sensors.Sink) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		key, value, ok := strings.Cut(line, ": ")
		if !ok || key == "" {
			continue
		}
		if err := sink.Metadata(sensors.MetadataEntry{
			Category: CategoryInfo,
			Key:      strings.TrimSpace(key),
			Value:    strings.TrimSpace(value),
		}); err != nil {
			return err
		}
	}
	return logstream.ReadFailure(scanner.Err())
}

// InspectArchive runs Inspect over the log.bin member of zr
func InspectArchive(zr *zip.Reader) (report Report, err error) {
	log := findMember(zr, LogFileName)
	if log == nil {
		return report, ErrMissingLog
	}
	err = readMember(log, func(r io.Reader) error {
		var ierr error
		report, ierr = Inspect(r)
		return ierr
	})
	return report, err
}
