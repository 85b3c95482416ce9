package logstream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/actfast/pkg/codec"
)

func buildStream(t *testing.T, records ...func(w *Writer)) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf, WriterConfig{})
	for _, rec := range records {
		rec(w)
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func appendRecord(t *testing.T, rt codec.RecordType, ts uint32, body []byte) func(w *Writer) {
	return func(w *Writer) {
		_, err := w.Append(rt, ts, body)
		require.NoError(t, err)
	}
}

func TestReader_EmptyStream(t *testing.T) {
	reader := NewReader(bytes.NewReader(nil), ReaderConfig{})

	record, err := reader.ReadNext()
	assert.Nil(t, record)
	assert.ErrorIs(t, err, io.EOF)

	iter := NewReader(bytes.NewReader(nil), ReaderConfig{})
	assert.False(t, iter.Next())
	assert.NoError(t, iter.Err())
}

func TestReader_Iterator(t *testing.T) {
	data := buildStream(t,
		appendRecord(t, codec.RecordParameters, 100, []byte{1, 2, 3, 4, 5, 6, 7, 8}),
		appendRecord(t, codec.RecordActivity, 101, []byte{0xAA, 0xBB, 0xCC}),
		appendRecord(t, codec.RecordLux, 102, []byte{0x10, 0x00}),
	)

	reader := NewReader(bytes.NewReader(data), ReaderConfig{BufferSize: 16})

	var types []codec.RecordType
	var bodies [][]byte
	for reader.Next() {
		rec := reader.Record()
		types = append(types, rec.Header.Type)
		bodies = append(bodies, rec.Body())
	}

	require.NoError(t, reader.Err())
	assert.Equal(t, []codec.RecordType{codec.RecordParameters, codec.RecordActivity, codec.RecordLux}, types)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, bodies[1])
	assert.Equal(t, int64(len(data)), reader.Offset())

	// the sequence is not restartable
	assert.False(t, reader.Next())
	assert.Nil(t, reader.Record())
}

func TestReader_ShortHeader(t *testing.T) {
	data := buildStream(t,
		appendRecord(t, codec.RecordLux, 1, []byte{0x01, 0x00}),
		func(w *Writer) { require.NoError(t, w.WriteRaw([]byte{0x1E, 0x05, 0x00})) },
	)

	reader := NewReader(bytes.NewReader(data), ReaderConfig{})
	assert.True(t, reader.Next())
	assert.False(t, reader.Next())
	assert.ErrorIs(t, reader.Err(), ErrFraming)
}

func TestReader_TruncatedPayload(t *testing.T) {
	full := buildStream(t, appendRecord(t, codec.RecordActivity, 1, bytes.Repeat([]byte{0x11}, 20)))

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "missing checksum byte", data: full[:len(full)-1]},
		{name: "half payload", data: full[:codec.HeaderSize+10]},
		{name: "header only", data: full[:codec.HeaderSize]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := NewReader(bytes.NewReader(tc.data), ReaderConfig{})
			record, err := reader.ReadNext()
			assert.Nil(t, record)
			assert.ErrorIs(t, err, ErrFraming)
		})
	}
}

func TestReader_InvalidSeparatorStillFramed(t *testing.T) {
	data := buildStream(t,
		appendRecord(t, codec.RecordLux, 1, []byte{0x01, 0x00}),
		appendRecord(t, codec.RecordLux, 2, []byte{0x02, 0x00}),
	)
	data[0] = 0x00

	reader := NewReader(bytes.NewReader(data), ReaderConfig{})
	var count int
	for reader.Next() {
		count++
	}
	require.NoError(t, reader.Err())
	assert.Equal(t, 2, count)
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestReader_UnderlyingError(t *testing.T) {
	boom := errors.New("disk on fire")
	data := buildStream(t, appendRecord(t, codec.RecordLux, 1, []byte{0x01, 0x00}))

	reader := NewReader(&failingReader{data: data[:4], err: boom}, ReaderConfig{})
	assert.False(t, reader.Next())
	assert.ErrorIs(t, reader.Err(), boom)
	assert.ErrorIs(t, reader.Err(), ErrIO)
	assert.NotErrorIs(t, reader.Err(), ErrFraming)
}

func TestReadFailure(t *testing.T) {
	boom := errors.New("checksum error")

	assert.NoError(t, ReadFailure(nil))

	err := ReadFailure(boom)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, boom)

	err = ReadFailure(bufio.ErrTooLong)
	assert.ErrorIs(t, err, ErrFraming)
	assert.NotErrorIs(t, err, ErrIO)

	// already classified errors are not wrapped twice
	framed := fmt.Errorf("%w: short", ErrFraming)
	assert.Equal(t, framed, ReadFailure(framed))
	assert.Equal(t, ErrIO, ReadFailure(ErrIO))
}

func TestWriter_Offsets(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WriterConfig{BufferSize: 64})

	off1, err := w.Append(codec.RecordLux, 1, []byte{0x01, 0x00})
	require.NoError(t, err)
	off2, err := w.Append(codec.RecordBattery, 2, []byte{0x10, 0x0E})
	require.NoError(t, err)

	assert.Equal(t, int64(0), off1)
	assert.Equal(t, int64(codec.HeaderSize+3), off2)
	assert.Equal(t, int64(2*(codec.HeaderSize+3)), w.Size())

	assert.Equal(t, 0, buf.Len(), "records stay buffered until flush")
	require.NoError(t, w.Flush())
	assert.Equal(t, int(w.Size()), buf.Len())
}
