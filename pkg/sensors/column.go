package sensors

import (
	"encoding/json"
	"fmt"
)

// ElementType tags the concrete element type of a column
type ElementType uint8

// Supported element types
const (
	Float32 ElementType = iota + 1
	Float64
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Bool
)

var elementTypeNames = map[ElementType]string{
	Float32: "float32",
	Float64: "float64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Bool:    "bool",
}

func (e ElementType) String() string {
	if name, ok := elementTypeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ElementType(%d)", uint8(e))
}

// ParseElementType is the inverse of ElementType.String
func ParseElementType(s string) (ElementType, error) {
	for et, name := range elementTypeNames {
		if name == s {
			return et, nil
		}
	}
	return 0, fmt.Errorf("unknown element type %q", s)
}

// Element is the closed set of types a column can hold
type Element interface {
	float32 | float64 | uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | bool
}

// Column is a named, homogeneous array inside a SensorTable. The only
// implementations are *Series[T] for the Element types; consumers type
// switch on those.
type Column interface {
	Kind() Kind
	ElementType() ElementType
	Len() int

	selectRows(rows []int, multiplicity int) Column
	floats() []float64
	reshape(multiplicity int) any
}

// Series is a column of T values. Multi-valued samples are interleaved:
// x0, y0, z0, x1, y1, z1, ...
type Series[T Element] struct {
	kind   Kind
	values []T
}

// NewSeries creates an empty column
func NewSeries[T Element](kind Kind) *Series[T] {
	return &Series[T]{kind: kind}
}

// Kind returns the column name
func (s *Series[T]) Kind() Kind { return s.kind }

// ElementType returns the tag for T
func (s *Series[T]) ElementType() ElementType { return elementTypeOf[T]() }

// Len returns the number of stored values
func (s *Series[T]) Len() int { return len(s.values) }

// Append adds values to the end of the column
func (s *Series[T]) Append(values ...T) {
	s.values = append(s.values, values...)
}

// Values returns the backing slice. Callers must not modify it.
func (s *Series[T]) Values() []T { return s.values }

func (s *Series[T]) selectRows(rows []int, multiplicity int) Column {
	out := &Series[T]{kind: s.kind, values: make([]T, 0, len(rows)*multiplicity)}
	for _, row := range rows {
		out.values = append(out.values, s.values[row*multiplicity:(row+1)*multiplicity]...)
	}
	return out
}

func (s *Series[T]) floats() []float64 {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = toFloat64(v)
	}
	return out
}

// reshape returns []T for single-valued columns and [][]T otherwise.
func (s *Series[T]) reshape(multiplicity int) any {
	if multiplicity <= 1 {
		return s.values
	}
	rows := make([][]T, 0, len(s.values)/multiplicity)
	for i := 0; i+multiplicity <= len(s.values); i += multiplicity {
		rows = append(rows, s.values[i:i+multiplicity])
	}
	return rows
}

func elementTypeOf[T Element]() ElementType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case bool:
		return Bool
	}
	panic("unreachable: Element type set is closed")
}

func toFloat64[T Element](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	}
	return 0
}

func decodeSeries[T Element](kind Kind, multiplicity int, raw json.RawMessage) (Column, error) {
	s := NewSeries[T](kind)
	if multiplicity <= 1 {
		if err := json.Unmarshal(raw, &s.values); err != nil {
			return nil, err
		}
		return s, nil
	}

	var rows [][]T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != multiplicity {
			return nil, fmt.Errorf("%w: column %s row %d has %d values, want %d",
				ErrShapeMismatch, kind, i, len(row), multiplicity)
		}
		s.values = append(s.values, row...)
	}
	return s, nil
}

func decodeColumn(kind Kind, et ElementType, multiplicity int, raw json.RawMessage) (Column, error) {
	switch et {
	case Float32:
		return decodeSeries[float32](kind, multiplicity, raw)
	case Float64:
		return decodeSeries[float64](kind, multiplicity, raw)
	case Uint8:
		return decodeSeries[uint8](kind, multiplicity, raw)
	case Uint16:
		return decodeSeries[uint16](kind, multiplicity, raw)
	case Uint32:
		return decodeSeries[uint32](kind, multiplicity, raw)
	case Uint64:
		return decodeSeries[uint64](kind, multiplicity, raw)
	case Int8:
		return decodeSeries[int8](kind, multiplicity, raw)
	case Int16:
		return decodeSeries[int16](kind, multiplicity, raw)
	case Int32:
		return decodeSeries[int32](kind, multiplicity, raw)
	case Int64:
		return decodeSeries[int64](kind, multiplicity, raw)
	case Bool:
		return decodeSeries[bool](kind, multiplicity, raw)
	}
	return nil, fmt.Errorf("unsupported element type %s", et)
}
