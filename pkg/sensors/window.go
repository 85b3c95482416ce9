package sensors

import (
	"sort"

	"github.com/ssargent/actfast/pkg/timeindex"
)

// Window returns a new table holding the rows of t whose timestamp lies in
// [from, to). Rows keep their original order.
func Window(t *SensorTable, from, to int64) (*SensorTable, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	rows := timeindex.Build(t.Datetime).Rows(from, to)
	sort.Ints(rows)

	out := NewTable(t.Name)
	out.Datetime = make([]int64, len(rows))
	for i, row := range rows {
		out.Datetime[i] = t.Datetime[row]
	}
	for _, c := range t.columns {
		m, err := t.Multiplicity(c)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(c.selectRows(rows, m)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WindowResult applies Window to every table of r
func WindowResult(r *Result, from, to int64) (*Result, error) {
	out := &Result{
		Format:   r.Format,
		Metadata: r.Metadata,
		Tables:   make(map[string]*SensorTable, len(r.Tables)),
	}
	for name, t := range r.Tables {
		w, err := Window(t, from, to)
		if err != nil {
			return nil, err
		}
		out.Tables[name] = w
	}
	return out, nil
}
