package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ssargent/actfast/pkg/actigraph"
	"github.com/ssargent/actfast/pkg/sensors"
	"github.com/ssargent/actfast/pkg/storage"
)

var axisLabels = []string{"x", "y", "z"}

func formatNanos(ns int64) string {
	return time.Unix(0, ns).UTC().Format(time.RFC3339Nano)
}

func componentLabel(c sensors.ColumnSummary) string {
	if c.Kind == sensors.KindAcceleration && c.Component < len(axisLabels) {
		return axisLabels[c.Component]
	}
	return strconv.Itoa(c.Component)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeSummary renders metadata and per-column statistics of res
func writeSummary(w io.Writer, res *sensors.Result) error {
	fmt.Fprintf(w, "Format: %s\n\n", res.Format)

	if len(res.Metadata) > 0 {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Category", "Key", "Value"})
		categories := make([]string, 0, len(res.Metadata))
		for c := range res.Metadata {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			keys := make([]string, 0, len(res.Metadata[c]))
			for k := range res.Metadata[c] {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				t.AppendRow(table.Row{c, k, fmt.Sprint(res.Metadata[c][k])})
			}
		}
		fmt.Fprintln(w, t.Render())
		fmt.Fprintln(w)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Table", "Rows", "First", "Last", "Column", "Axis", "Min", "Max", "Mean", "StdDev"})
	for _, name := range res.TableNames() {
		summary, err := sensors.Summarize(res.Tables[name])
		if err != nil {
			return err
		}
		if len(summary.Columns) == 0 {
			t.AppendRow(table.Row{summary.Name, summary.Rows})
			continue
		}
		for _, c := range summary.Columns {
			t.AppendRow(table.Row{
				summary.Name, summary.Rows,
				formatNanos(summary.FirstTime), formatNanos(summary.LastTime),
				c.Kind, componentLabel(c),
				fmt.Sprintf("%.4f", c.Min), fmt.Sprintf("%.4f", c.Max),
				fmt.Sprintf("%.4f", c.Mean), fmt.Sprintf("%.4f", c.StdDev),
			})
		}
	}
	fmt.Fprintln(w, t.Render())
	return nil
}

// writeInspect renders the record histogram of a log.bin stream
func writeInspect(w io.Writer, report actigraph.Report) {
	fmt.Fprintf(w, "Records: %d\n", report.Records)
	fmt.Fprintf(w, "Invalid separators: %d\n", report.InvalidSeparators)
	fmt.Fprintf(w, "Checksum mismatches: %d\n", report.ChecksumMismatches)
	if report.Records > 0 {
		fmt.Fprintf(w, "First: %s\n", time.Unix(int64(report.First), 0).UTC().Format(time.RFC3339))
		fmt.Fprintf(w, "Last: %s\n", time.Unix(int64(report.Last), 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(w)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Type", "ID", "Count", "Bytes"})
	for _, tc := range report.Types {
		t.AppendRow(table.Row{tc.Type.String(), fmt.Sprintf("0x%02x", uint8(tc.Type)), tc.Count, tc.Bytes})
	}
	fmt.Fprintln(w, t.Render())
}

// writeResultList renders stored result descriptions
func writeResultList(w io.Writer, list []storage.ResultInfo) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Name", "Format", "Created", "Rows", "Size"})
	for _, info := range list {
		names := make([]string, 0, len(info.Rows))
		for n := range info.Rows {
			names = append(names, n)
		}
		sort.Strings(names)
		rows := ""
		for i, n := range names {
			if i > 0 {
				rows += " "
			}
			rows += fmt.Sprintf("%s=%d", n, info.Rows[n])
		}
		t.AppendRow(table.Row{info.ID, info.Name, info.Format, info.CreatedAt.Format(time.RFC3339), rows, info.Size})
	}
	fmt.Fprintln(w, t.Render())
}
