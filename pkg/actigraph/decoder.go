// Package actigraph decodes Actigraph GT3X recordings: a zip archive that
// holds an info.txt description and a log.bin stream of typed records.
package actigraph

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ssargent/actfast/pkg/bitreader"
	"github.com/ssargent/actfast/pkg/codec"
	"github.com/ssargent/actfast/pkg/logging"
	"github.com/ssargent/actfast/pkg/logstream"
	"github.com/ssargent/actfast/pkg/metrics"
	"github.com/ssargent/actfast/pkg/params"
	"github.com/ssargent/actfast/pkg/sensors"
	"github.com/ssargent/actfast/pkg/timing"
)

// FormatName is the human readable name of the format
const FormatName = "Actigraph GT3X"

const (
	// CategoryParameters holds Parameters record entries
	CategoryParameters = "parameters"
	// CategoryInfo holds info.txt lines
	CategoryInfo = "info"
	// CategoryRecords holds Metadata record payloads
	CategoryRecords = "records"

	// AccelerationScale converts raw counts to g
	AccelerationScale = 256.0

	fieldWidth = 12
)

// Options control how strictly a stream is decoded
type Options struct {
	// Strict turns a record that cannot be timestamped into a fatal error
	// instead of skipping it.
	Strict bool
	// BufferSize of the record reader; 0 uses the default.
	BufferSize int
}

// Stats summarises one decoded stream
type Stats struct {
	Records           int
	InvalidSeparators int
	UnknownRecords    int
	SkippedRecords    int
	Samples           int
}

// Decoder turns a log.bin stream into sensor tables
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

type decodeState struct {
	cfg      *params.DecodeConfig
	activity *sensors.SensorTable
	accel    *sensors.Series[float32]
	lux      *sensors.SensorTable
	luxCol   *sensors.Series[uint16]
	battery  *sensors.SensorTable
	voltage  *sensors.Series[float32]
	metadata int
}

func newDecodeState() *decodeState {
	s := &decodeState{
		cfg:      params.NewDecodeConfig(),
		activity: sensors.NewTable(sensors.TableActivity),
		lux:      sensors.NewTable(sensors.TableLux),
		battery:  sensors.NewTable(sensors.TableBattery),
	}
	s.accel = sensors.MustColumn[float32](s.activity, sensors.KindAcceleration)
	s.luxCol = sensors.MustColumn[uint16](s.lux, sensors.KindLux)
	s.voltage = sensors.MustColumn[float32](s.battery, sensors.KindBatteryVoltage)
	return s
}

// Decode reads records from r in stream order and emits the Activity, Lux
// and Battery tables to sink once the stream ends.
func (d *Decoder) Decode(r io.Reader, sink sensors.Sink) (Stats, error) {
	var stats Stats
	state := newDecodeState()
	it := logstream.NewReader(r, logstream.ReaderConfig{BufferSize: d.opts.BufferSize})

	for it.Next() {
		rec := it.Record()
		h := rec.Header
		offset := it.Offset() - int64(codec.HeaderSize+h.PayloadSize())
		stats.Records++

		if !h.Valid() {
			stats.InvalidSeparators++
			d.recorder.RecordWarning(FormatName, "invalid_separator")
			d.logger.Warn("invalid record separator",
				zap.String("separator", fmt.Sprintf("0x%02x", h.Separator)),
				zap.String("record_type", h.Type.String()),
				zap.Int64("offset", offset))
		}

		if !h.Type.Known() {
			stats.UnknownRecords++
			d.recorder.RecordWarning(FormatName, "unknown_record_type")
			d.logger.Warn("unknown record type",
				zap.Uint8("record_type", uint8(h.Type)),
				zap.Int64("offset", offset))
			continue
		}
		d.recorder.RecordDecoded(FormatName, h.Type.String())

		if err := d.dispatch(state, rec, sink); err != nil {
			if errors.Is(err, timing.ErrConfig) && !d.opts.Strict {
				stats.SkippedRecords++
				d.recorder.RecordWarning(FormatName, "skipped_record")
				d.logger.Warn("skipping record",
					zap.String("record_type", h.Type.String()),
					zap.Int64("offset", offset),
					zap.Error(err))
				continue
			}
			return stats, errors.Wrapf(err, "decode %s record at offset %d", h.Type, offset)
		}
	}
	if err := it.Err(); err != nil {
		return stats, errors.Wrap(err, "read log records")
	}

	for _, table := range []*sensors.SensorTable{state.activity, state.lux, state.battery} {
		if err := sensors.Emit(sink, table); err != nil {
			return stats, errors.Wrapf(err, "emit %s table", table.Name)
		}
		d.recorder.RecordSamples(FormatName, table.Name, table.Len())
	}
	stats.Samples = state.activity.Len()

	return stats, nil
}

func (d *Decoder) dispatch(state *decodeState, rec *codec.Record, sink sensors.Sink) error {
	h := rec.Header
	switch h.Type {
	case codec.RecordParameters:
		return d.decodeParameters(state, rec.Body(), sink)

	case codec.RecordActivity:
		times, xyz, err := DecodeActivity(rec.Body(), h.Timestamp, state.cfg.SampleRate)
		if err != nil {
			return err
		}
		state.activity.AppendTime(times...)
		state.accel.Append(xyz...)

	case codec.RecordLux:
		v, ok := d.readUint16(rec)
		if !ok {
			return nil
		}
		state.lux.AppendTime(int64(h.Timestamp) * timing.NanosPerSecond)
		state.luxCol.Append(v)

	case codec.RecordBattery:
		mv, ok := d.readUint16(rec)
		if !ok {
			return nil
		}
		state.battery.AppendTime(int64(h.Timestamp) * timing.NanosPerSecond)
		state.voltage.Append(float32(mv) / 1000)

	case codec.RecordMetadata:
		key := fmt.Sprintf("metadata_%d", state.metadata)
		state.metadata++
		return sink.Metadata(sensors.MetadataEntry{
			Category: CategoryRecords,
			Key:      key,
			Value:    string(rec.Body()),
		})

	default:
		d.logger.Debug("ignoring record", zap.String("record_type", h.Type.String()))
	}
	return nil
}

func (d *Decoder) decodeParameters(state *decodeState, body []byte, sink sensors.Sink) error {
	stats, err := params.Interpret(body, state.cfg, func(e params.Entry) error {
		return sink.Metadata(sensors.MetadataEntry{
			Category: CategoryParameters,
			Key:      e.Name(),
			Value:    e.Value,
		})
	})
	if err != nil {
		return err
	}
	if stats.TrailingBytes > 0 {
		d.logger.Warn("ignoring trailing parameter bytes", zap.Int("bytes", stats.TrailingBytes))
	}
	d.logger.Debug("parameters",
		zap.Int("entries", stats.Entries),
		zap.Int("unknown", stats.Unknown),
		zap.Uint32("sample_rate", state.cfg.SampleRate))
	return nil
}

func (d *Decoder) readUint16(rec *codec.Record) (uint16, bool) {
	body := rec.Body()
	if len(body) < 2 {
		d.recorder.RecordWarning(FormatName, "short_record")
		d.logger.Warn("record too short",
			zap.String("record_type", rec.Header.Type.String()),
			zap.Int("bytes", len(body)))
		return 0, false
	}
	return binary.LittleEndian.Uint16(body), true
}

// DecodeActivity unpacks a packed Activity payload (checksum byte removed)
// into timestamps and interleaved x, y, z values in g. Fields are read until
// the payload is exhausted; a trailing partial sample is dropped. Nothing is
// returned unless every sample could be timestamped.
func DecodeActivity(body []byte, baseSeconds uint32, rateHz uint32) ([]int64, []float32, error) {
	br := bitreader.New(body)
	fields := make([]int64, 0, len(body)*8/fieldWidth)
	for {
		v, err := br.ReadSigned(fieldWidth)
		if err != nil {
			break
		}
		fields = append(fields, v)
	}

	n := len(fields) / 3
	times := make([]int64, n)
	xyz := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		ts, err := timing.SampleTime(int64(baseSeconds), rateHz, uint32(i))
		if err != nil {
			return nil, nil, err
		}
		times[i] = ts

		// wire order is y, x, z
		y, x, z := fields[3*i], fields[3*i+1], fields[3*i+2]
		xyz = append(xyz,
			float32(x)/AccelerationScale,
			float32(y)/AccelerationScale,
			float32(z)/AccelerationScale)
	}
	return times, xyz, nil
}
