package sensors

import (
	"github.com/montanaflynn/stats"
)

// ColumnSummary describes one component of a column. Component is the
// position inside a multi-valued row (0 for x, 1 for y, 2 for z).
type ColumnSummary struct {
	Kind      Kind    `json:"kind"`
	Component int     `json:"component"`
	Count     int     `json:"count"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
}

// TableSummary describes a whole table
type TableSummary struct {
	Name      string          `json:"name"`
	Rows      int             `json:"rows"`
	FirstTime int64           `json:"first_time"`
	LastTime  int64           `json:"last_time"`
	Columns   []ColumnSummary `json:"columns"`
}

// Summarize computes per-component descriptive statistics for every column
func Summarize(t *SensorTable) (TableSummary, error) {
	summary := TableSummary{Name: t.Name, Rows: t.Len()}
	if t.Len() > 0 {
		summary.FirstTime = t.Datetime[0]
		summary.LastTime = t.Datetime[t.Len()-1]
	}
	if err := t.Validate(); err != nil {
		return summary, err
	}
	if t.Len() == 0 {
		return summary, nil
	}

	for _, c := range t.columns {
		m, _ := t.Multiplicity(c)
		all := c.floats()
		for comp := 0; comp < m; comp++ {
			data := make(stats.Float64Data, 0, t.Len())
			for i := comp; i < len(all); i += m {
				data = append(data, all[i])
			}
			cs, err := describe(data)
			if err != nil {
				return summary, err
			}
			cs.Kind = c.Kind()
			cs.Component = comp
			summary.Columns = append(summary.Columns, cs)
		}
	}
	return summary, nil
}

func describe(data stats.Float64Data) (ColumnSummary, error) {
	var (
		cs  = ColumnSummary{Count: len(data)}
		err error
	)
	if cs.Min, err = stats.Min(data); err != nil {
		return cs, err
	}
	if cs.Max, err = stats.Max(data); err != nil {
		return cs, err
	}
	if cs.Mean, err = stats.Mean(data); err != nil {
		return cs, err
	}
	if cs.StdDev, err = stats.StandardDeviation(data); err != nil {
		return cs, err
	}
	return cs, nil
}
