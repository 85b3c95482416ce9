package actigraph

import (
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/ssargent/actfast/pkg/codec"
	"github.com/ssargent/actfast/pkg/logstream"
)

// TypeCount is the number of records of one type
type TypeCount struct {
	Type  codec.RecordType
	Count int
	Bytes int64
}

// Report describes the record structure of a log.bin stream
type Report struct {
	Records            int
	InvalidSeparators  int
	ChecksumMismatches int
	First, Last        uint32 // smallest and largest record timestamps
	Types              []TypeCount
}

// Inspect frames every record of r without decoding payloads
func Inspect(r io.Reader) (Report, error) {
	var report Report
	counts := make(map[codec.RecordType]*TypeCount)

	it := logstream.NewReader(r, logstream.ReaderConfig{})
	for it.Next() {
		rec := it.Record()
		h := rec.Header

		if report.Records == 0 || h.Timestamp < report.First {
			report.First = h.Timestamp
		}
		if h.Timestamp > report.Last {
			report.Last = h.Timestamp
		}
		report.Records++

		if !h.Valid() {
			report.InvalidSeparators++
		}
		if !rec.ChecksumValid() {
			report.ChecksumMismatches++
		}

		tc, ok := counts[h.Type]
		if !ok {
			tc = &TypeCount{Type: h.Type}
			counts[h.Type] = tc
		}
		tc.Count++
		tc.Bytes += int64(codec.HeaderSize + h.PayloadSize())
	}
	if err := it.Err(); err != nil {
		return report, errors.Wrap(err, "inspect log records")
	}

	for _, tc := range counts {
		report.Types = append(report.Types, *tc)
	}
	sort.Slice(report.Types, func(i, j int) bool {
		return report.Types[i].Type < report.Types[j].Type
	})
	return report, nil
}
