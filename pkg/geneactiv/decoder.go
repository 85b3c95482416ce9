// Package geneactiv decodes GENEActiv .bin recordings: a fixed-length text
// header followed by fixed-length pages of text fields and one line of
// packed samples.
package geneactiv

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ssargent/actfast/pkg/bitreader"
	"github.com/ssargent/actfast/pkg/logging"
	"github.com/ssargent/actfast/pkg/logstream"
	"github.com/ssargent/actfast/pkg/metrics"
	"github.com/ssargent/actfast/pkg/sensors"
	"github.com/ssargent/actfast/pkg/timing"
)

// FormatName is the human readable name of the format
const FormatName = "GeneActiv BIN"

const (
	// HeaderLines is the number of lines before the first page
	HeaderLines = 59
	// PageLines is the number of lines in every page
	PageLines = 10
	// SampleSize is the packed size of one sample in bytes
	SampleSize = 6

	pageDataLine   = 9
	maxLineSize    = 1 << 20
	pageTimeLayout = "2006-01-02 15:04:05"

	idPageTime       = "Page Time:"
	idPageFrequency  = "Measurement Frequency:"
	idPageTemp       = "Temperature:"
	idPageBattery    = "Battery voltage:"
	axisBits         = 12
	lightBits        = 10
	reservedBits     = 1
	pageTypeRecorded = "Recorded Data"
)

// Options control page decoding
type Options struct {
	// HexPages hex-decodes the sample line of every page before unpacking.
	HexPages bool
	// Strict turns a page with an unusable sample rate into a fatal error
	// instead of skipping it.
	Strict bool
}

// Stats summarises one decoded file
type Stats struct {
	Pages        int
	Samples      int
	SkippedPages int
}

// Decoder turns a GENEActiv file into sensor tables
type Decoder struct {
	logger   *zap.Logger
	recorder metrics.Recorder
	opts     Options
}

// NewDecoder creates a decoder. Logger and recorder may be nil.
func NewDecoder(logger *zap.Logger, recorder metrics.Recorder, opts Options) *Decoder {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Decoder{
		logger:   logging.OrNop(logger).With(zap.String("format", FormatName)),
		recorder: recorder,
		opts:     opts,
	}
}

type pageState struct {
	base        int64
	rate        float64
	hasTime     bool
	temperature *float64
	battery     *float64
}

type tables struct {
	activity    *sensors.SensorTable
	accel       *sensors.Series[float32]
	light       *sensors.Series[float32]
	button      *sensors.Series[bool]
	temperature *sensors.SensorTable
	tempCol     *sensors.Series[float32]
	battery     *sensors.SensorTable
	voltCol     *sensors.Series[float32]
}

func newTables() *tables {
	t := &tables{
		activity:    sensors.NewTable(sensors.TableActivity),
		temperature: sensors.NewTable(sensors.TableTemperature),
		battery:     sensors.NewTable(sensors.TableBattery),
	}
	t.accel = sensors.MustColumn[float32](t.activity, sensors.KindAcceleration)
	t.light = sensors.MustColumn[float32](t.activity, sensors.KindLight)
	t.button = sensors.MustColumn[bool](t.activity, sensors.KindButtonState)
	t.tempCol = sensors.MustColumn[float32](t.temperature, sensors.KindTemperature)
	t.voltCol = sensors.MustColumn[float32](t.battery, sensors.KindBatteryVoltage)
	return t
}

// scanRawLines splits on '\n' only. Carriage returns are left in place
// because raw sample lines may contain 0x0D bytes.
func scanRawLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Decode reads the header, then every page, and emits the Activity,
// Temperature and Battery tables to sink at end of file.
func (d *Decoder) Decode(r io.Reader, sink sensors.Sink) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	scanner.Split(scanRawLines)

	cal, err := d.readHeader(scanner, sink)
	if err != nil {
		return stats, err
	}

	out := newTables()
	var page pageState
	line := 0
	for scanner.Scan() {
		idx := line % PageLines
		line++

		if idx != pageDataLine {
			if err := page.field(strings.TrimRight(scanner.Text(), "\r")); err != nil {
				return stats, errors.Wrapf(err, "page %d line %d", stats.Pages, idx)
			}
			continue
		}

		n, err := d.decodePage(&page, scanner.Bytes(), cal, out)
		if err != nil {
			if errors.Is(err, timing.ErrConfig) && !d.opts.Strict {
				stats.SkippedPages++
				d.recorder.RecordWarning(FormatName, "skipped_page")
				d.logger.Warn("skipping page", zap.Int("page", stats.Pages), zap.Error(err))
			} else {
				return stats, errors.Wrapf(err, "page %d", stats.Pages)
			}
		}
		d.recorder.RecordDecoded(FormatName, pageTypeRecorded)
		stats.Samples += n
		stats.Pages++
		page = pageState{}
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.Wrap(logstream.ReadFailure(err), "read pages")
	}
	if rem := line % PageLines; rem != 0 {
		d.recorder.RecordWarning(FormatName, "incomplete_page")
		d.logger.Warn("ignoring incomplete final page", zap.Int("lines", rem))
	}

	for _, table := range []*sensors.SensorTable{out.activity, out.temperature, out.battery} {
		if err := sensors.Emit(sink, table); err != nil {
			return stats, errors.Wrapf(err, "emit %s table", table.Name)
		}
		d.recorder.RecordSamples(FormatName, table.Name, table.Len())
	}
	return stats, nil
}

func (d *Decoder) readHeader(scanner *bufio.Scanner, sink sensors.Sink) (Calibration, error) {
	cal := DefaultCalibration()
	var section headerSection

	line := 0
	for ; line < HeaderLines && scanner.Scan(); line++ {
		text := strings.TrimRight(scanner.Text(), "\r")
		if err := cal.apply(text); err != nil {
			return cal, errors.Wrapf(logstream.ErrFraming, "header line %d: %v", line, err)
		}
		if category, key, value, ok := section.line(text); ok {
			if err := sink.Metadata(sensors.MetadataEntry{Category: category, Key: key, Value: value}); err != nil {
				return cal, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return cal, errors.Wrap(logstream.ReadFailure(err), "read header")
	}
	if line < HeaderLines {
		return cal, errors.Wrapf(logstream.ErrFraming, "truncated header: %d of %d lines", line, HeaderLines)
	}

	d.logger.Debug("calibration",
		zap.Float64("x_gain", cal.XGain), zap.Float64("x_offset", cal.XOffset),
		zap.Float64("y_gain", cal.YGain), zap.Float64("y_offset", cal.YOffset),
		zap.Float64("z_gain", cal.ZGain), zap.Float64("z_offset", cal.ZOffset),
		zap.Float64("volts", cal.Volts), zap.Float64("lux", cal.Lux))

	return cal, cal.Validate()
}

// field applies one non-sample page line to the page state
func (p *pageState) field(line string) error {
	switch {
	case strings.HasPrefix(line, idPageTime):
		base, err := ParsePageTime(line[len(idPageTime):])
		if err != nil {
			return err
		}
		p.base, p.hasTime = base, true

	case strings.HasPrefix(line, idPageFrequency):
		v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[len(idPageFrequency):]), "Hz"))
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(logstream.ErrFraming, "measurement frequency %q", v)
		}
		p.rate = rate

	case strings.HasPrefix(line, idPageTemp):
		v, err := strconv.ParseFloat(strings.TrimSpace(line[len(idPageTemp):]), 64)
		if err == nil {
			p.temperature = &v
		}

	case strings.HasPrefix(line, idPageBattery):
		v, err := strconv.ParseFloat(strings.TrimSpace(line[len(idPageBattery):]), 64)
		if err == nil {
			p.battery = &v
		}
	}
	return nil
}

// ParsePageTime parses "YYYY-MM-DD hh:mm:ss:mmm" as UTC nanoseconds since
// the Unix epoch.
func ParsePageTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return 0, errors.Wrapf(logstream.ErrFraming, "page time %q", s)
	}
	t, err := time.ParseInLocation(pageTimeLayout, s[:i], time.UTC)
	if err != nil {
		return 0, errors.Wrapf(logstream.ErrFraming, "page time %q: %v", s, err)
	}
	ms, err := strconv.Atoi(s[i+1:])
	if err != nil || ms < 0 || ms > 999 {
		return 0, errors.Wrapf(logstream.ErrFraming, "page time %q: bad milliseconds", s)
	}
	return t.UnixNano() + int64(ms)*int64(time.Millisecond), nil
}

func (d *Decoder) pageBytes(line []byte) ([]byte, error) {
	if d.opts.HexPages {
		data, err := hex.DecodeString(strings.TrimSpace(string(line)))
		if err != nil {
			return nil, errors.Wrapf(logstream.ErrFraming, "hex page data: %v", err)
		}
		return data, nil
	}
	if len(line)%SampleSize == 1 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line, nil
}

func (d *Decoder) decodePage(page *pageState, line []byte, cal Calibration, out *tables) (int, error) {
	if !page.hasTime {
		return 0, errors.Wrap(logstream.ErrFraming, "page has no Page Time")
	}
	data, err := d.pageBytes(line)
	if err != nil {
		return 0, err
	}

	n := len(data) / SampleSize
	times := make([]int64, n)
	for i := range times {
		if times[i], err = timing.SampleTimeHz(page.base, page.rate, i); err != nil {
			return 0, err
		}
	}

	samples, err := UnpackSamples(data[:n*SampleSize])
	if err != nil {
		return 0, err
	}

	out.activity.AppendTime(times...)
	for _, s := range samples {
		out.accel.Append(
			Axis(int64(s.X), cal.XGain, cal.XOffset),
			Axis(int64(s.Y), cal.YGain, cal.YOffset),
			Axis(int64(s.Z), cal.ZGain, cal.ZOffset))
		out.light.Append(cal.Light(int64(s.Light)))
		out.button.Append(s.Button)
	}

	if page.temperature != nil {
		out.temperature.AppendTime(page.base)
		out.tempCol.Append(float32(*page.temperature))
	}
	if page.battery != nil {
		out.battery.AppendTime(page.base)
		out.voltCol.Append(float32(*page.battery))
	}
	return n, nil
}

// RawSample is one packed sample before calibration
type RawSample struct {
	X, Y, Z int16
	Light   int16 // 10-bit two's complement
	Button  bool
}

// UnpackSamples reads consecutive 48-bit samples. Running out of bits in the
// middle of a sample is a framing error.
func UnpackSamples(data []byte) ([]RawSample, error) {
	br := bitreader.New(data)
	samples := make([]RawSample, 0, len(data)/SampleSize)
	for br.Remaining() > 0 {
		s, err := readSample(br)
		if err != nil {
			return nil, errors.Wrapf(logstream.ErrFraming, "sample %d: %v", len(samples), err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func readSample(br *bitreader.Reader) (RawSample, error) {
	var s RawSample
	axes := []*int16{&s.X, &s.Y, &s.Z}
	for _, axis := range axes {
		v, err := br.ReadSigned(axisBits)
		if err != nil {
			return s, err
		}
		*axis = int16(v)
	}
	light, err := br.ReadSigned(lightBits)
	if err != nil {
		return s, err
	}
	s.Light = int16(light)
	if s.Button, err = br.ReadBool(); err != nil {
		return s, err
	}
	return s, br.Skip(reservedBits)
}
