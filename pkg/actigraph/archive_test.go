package actigraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/actfast/pkg/codec"
	"github.com/ssargent/actfast/pkg/params"
	"github.com/ssargent/actfast/pkg/sensors"
	"github.com/ssargent/actfast/pkg/timing"
)

func openZip(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return zr
}

func TestDecodeArchive_EndToEnd(t *testing.T) {
	log := mustLog(t, func(b *LogBuilder) {
		require.NoError(t, b.Parameters(1700000000, params.EncodeEntry(params.AddressSpaceFlash, 10, 100)))
		require.NoError(t, b.Activity(1700000000, repeat(Sample{X: -50, Y: 100, Z: 256}, 3)))
	})
	var archive bytes.Buffer
	require.NoError(t, WriteArchive(&archive, map[string]string{"Serial Number": "MOS2E12345678"}, log))

	c := sensors.NewCollector(FormatName)
	stats, err := NewDecoder(nil, nil, Options{}).DecodeArchive(openZip(t, archive.Bytes()), c)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Samples)

	r := c.Result()
	activity := r.Tables[sensors.TableActivity]
	require.NotNil(t, activity)

	base := int64(1700000000) * timing.NanosPerSecond
	assert.Equal(t, []int64{base, base + 10_000_000, base + 20_000_000}, activity.Datetime)

	row := []float32{-50.0 / 256, 100.0 / 256, 1.0}
	assert.Equal(t, append(append(append([]float32{}, row...), row...), row...), accel(t, r))

	assert.Equal(t, "MOS2E12345678", r.Metadata[CategoryInfo]["Serial Number"])
	assert.Equal(t, uint32(100), r.Metadata[CategoryParameters]["SampleRate"])
}

func TestDecodeArchive_MissingLog(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create(InfoFileName)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewDecoder(nil, nil, Options{}).DecodeArchive(openZip(t, buf.Bytes()), sensors.SinkFuncs{})
	assert.ErrorIs(t, err, ErrMissingLog)
}

func TestSynthesize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Synthesize(&buf, SynthOptions{
		Start:      1600000000,
		SampleRate: 50,
		Seconds:    4,
		Lux:        true,
		Info:       map[string]string{"Device Type": "wGT3XBT"},
	}))

	c := sensors.NewCollector(FormatName)
	_, err := NewDecoder(nil, nil, Options{}).DecodeArchive(openZip(t, buf.Bytes()), c)
	require.NoError(t, err)

	r := c.Result()
	assert.Equal(t, 200, r.Tables[sensors.TableActivity].Len())
	assert.Equal(t, 4, r.Tables[sensors.TableLux].Len())
	assert.Equal(t, "wGT3XBT", r.Metadata[CategoryInfo]["Device Type"])
	assert.NoError(t, r.Tables[sensors.TableActivity].Validate())
}

func TestParseInfo(t *testing.T) {
	info := "Serial Number: MOS2E12345678\r\nSample Rate: 30\r\nno separator here\r\nTimeZone: -05:00:00\r\n"

	c := sensors.NewCollector(FormatName)
	require.NoError(t, ParseInfo(strings.NewReader(info), c))

	got := c.Result().Metadata[CategoryInfo]
	assert.Equal(t, map[string]any{
		"Serial Number": "MOS2E12345678",
		"Sample Rate":   "30",
		"TimeZone":      "-05:00:00",
	}, got)
}

func TestInspect(t *testing.T) {
	log := mustLog(t, func(b *LogBuilder) {
		require.NoError(t, b.Parameters(10, params.EncodeEntry(params.AddressSpaceFlash, 10, 30)))
		require.NoError(t, b.Activity(12, repeat(Sample{}, 30)))
		require.NoError(t, b.Activity(11, repeat(Sample{}, 30)))
		require.NoError(t, b.Record(codec.RecordLux, 13, []byte{1, 0}))
	})
	log[len(log)-1] ^= 0xFF // corrupt the Lux checksum

	report, err := Inspect(bytes.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Records)
	assert.Equal(t, 1, report.ChecksumMismatches)
	assert.Equal(t, 0, report.InvalidSeparators)
	assert.Equal(t, uint32(10), report.First)
	assert.Equal(t, uint32(13), report.Last)
	require.Len(t, report.Types, 3)
	assert.Equal(t, codec.RecordActivity, report.Types[0].Type)
	assert.Equal(t, 2, report.Types[0].Count)
	assert.Equal(t, codec.RecordParameters, report.Types[2].Type)
}

func TestInspectArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Synthesize(&buf, SynthOptions{Start: 1600000000, SampleRate: 30, Seconds: 3}))

	report, err := InspectArchive(openZip(t, buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Records)
	assert.Equal(t, uint32(1600000000), report.First)
	assert.Equal(t, uint32(1600000002), report.Last)

	var empty bytes.Buffer
	require.NoError(t, zip.NewWriter(&empty).Close())
	_, err = InspectArchive(openZip(t, empty.Bytes()))
	assert.ErrorIs(t, err, ErrMissingLog)
}
