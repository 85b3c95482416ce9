package sensors

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Result is everything decoded from one source file
type Result struct {
	Format   string
	Metadata map[string]map[string]any
	Tables   map[string]*SensorTable
}

// TableNames returns the table names in sorted order
func (r *Result) TableNames() []string {
	names := make([]string, 0, len(r.Tables))
	for name := range r.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collector is a Sink that accumulates a Result in memory
type Collector struct {
	result *Result
}

// NewCollector creates a collector for a source of the given format name
func NewCollector(format string) *Collector {
	return &Collector{
		result: &Result{
			Format:   format,
			Metadata: make(map[string]map[string]any),
			Tables:   make(map[string]*SensorTable),
		},
	}
}

// Metadata implements Sink. Later values replace earlier ones for the same
// category and key.
func (c *Collector) Metadata(entry MetadataEntry) error {
	category, ok := c.result.Metadata[entry.Category]
	if !ok {
		category = make(map[string]any)
		c.result.Metadata[entry.Category] = category
	}
	category[entry.Key] = entry.Value
	return nil
}

// Table implements Sink
func (c *Collector) Table(table *SensorTable) error {
	if _, ok := c.result.Tables[table.Name]; ok {
		return fmt.Errorf("sensors: table %s emitted twice", table.Name)
	}
	c.result.Tables[table.Name] = table
	return nil
}

// Result returns the accumulated result
func (c *Collector) Result() *Result { return c.result }

type columnJSON struct {
	DType        string          `json:"dtype"`
	Multiplicity int             `json:"multiplicity"`
	Values       json.RawMessage `json:"values"`
}

type tableJSON struct {
	Datetime []int64             `json:"datetime"`
	Order    []Kind              `json:"order"`
	Columns  map[Kind]columnJSON `json:"columns"`
}

type resultJSON struct {
	Format   string                    `json:"format"`
	Metadata map[string]map[string]any `json:"metadata"`
	Tables   map[string]tableJSON      `json:"tables"`
}

// MarshalJSON encodes a table with multi-valued columns reshaped to one
// array per row.
func (t *SensorTable) MarshalJSON() ([]byte, error) {
	tj, err := t.toJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(tj)
}

func (t *SensorTable) toJSON() (tableJSON, error) {
	tj := tableJSON{
		Datetime: t.Datetime,
		Columns:  make(map[Kind]columnJSON, len(t.columns)),
	}
	if tj.Datetime == nil {
		tj.Datetime = []int64{}
	}
	for _, c := range t.columns {
		m, err := t.Multiplicity(c)
		if err != nil {
			return tableJSON{}, err
		}
		values, err := json.Marshal(c.reshape(m))
		if err != nil {
			return tableJSON{}, fmt.Errorf("encode column %s: %w", c.Kind(), err)
		}
		tj.Order = append(tj.Order, c.Kind())
		tj.Columns[c.Kind()] = columnJSON{
			DType:        c.ElementType().String(),
			Multiplicity: m,
			Values:       values,
		}
	}
	return tj, nil
}

func tableFromJSON(name string, tj tableJSON) (*SensorTable, error) {
	t := NewTable(name)
	t.Datetime = tj.Datetime
	for _, kind := range tj.Order {
		cj, ok := tj.Columns[kind]
		if !ok {
			return nil, fmt.Errorf("sensors: table %s lists missing column %s", name, kind)
		}
		et, err := ParseElementType(cj.DType)
		if err != nil {
			return nil, err
		}
		c, err := decodeColumn(kind, et, cj.Multiplicity, cj.Values)
		if err != nil {
			return nil, fmt.Errorf("decode column %s: %w", kind, err)
		}
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MarshalJSON implements json.Marshaler
func (r *Result) MarshalJSON() ([]byte, error) {
	rj := resultJSON{
		Format:   r.Format,
		Metadata: r.Metadata,
		Tables:   make(map[string]tableJSON, len(r.Tables)),
	}
	for name, t := range r.Tables {
		tj, err := t.toJSON()
		if err != nil {
			return nil, err
		}
		rj.Tables[name] = tj
	}
	return json.Marshal(rj)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Result) UnmarshalJSON(data []byte) error {
	var rj resultJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	r.Format = rj.Format
	r.Metadata = rj.Metadata
	if r.Metadata == nil {
		r.Metadata = make(map[string]map[string]any)
	}
	r.Tables = make(map[string]*SensorTable, len(rj.Tables))
	for name, tj := range rj.Tables {
		t, err := tableFromJSON(name, tj)
		if err != nil {
			return err
		}
		r.Tables[name] = t
	}
	return nil
}
