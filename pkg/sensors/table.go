package sensors

import (
	"errors"
	"fmt"
)

// Kind names a column inside a table
type Kind string

// Column kinds produced by the decoders
const (
	KindAcceleration   Kind = "acceleration"
	KindLight          Kind = "light"
	KindButtonState    Kind = "button_state"
	KindLux            Kind = "lux"
	KindBatteryVoltage Kind = "battery_voltage"
	KindTemperature    Kind = "temperature"
)

// Table names produced by the decoders
const (
	TableActivity    = "Activity"
	TableLux         = "Lux"
	TableBattery     = "Battery"
	TableTemperature = "Temperature"
)

var (
	// ErrShapeMismatch is returned when a column length is not a positive
	// multiple of the table's datetime length.
	ErrShapeMismatch = errors.New("sensors: column shape mismatch")

	// ErrColumnType is returned when a column exists with another element type.
	ErrColumnType = errors.New("sensors: column element type mismatch")
)

// SensorTable is a set of equal-row-count columns sharing one datetime
// axis of nanoseconds since the Unix epoch.
type SensorTable struct {
	Name     string
	Datetime []int64

	columns []Column
	byKind  map[Kind]int
}

// NewTable creates an empty table
func NewTable(name string) *SensorTable {
	return &SensorTable{
		Name:   name,
		byKind: make(map[Kind]int),
	}
}

// AppendTime appends row timestamps
func (t *SensorTable) AppendTime(ts ...int64) {
	t.Datetime = append(t.Datetime, ts...)
}

// Len returns the number of rows
func (t *SensorTable) Len() int { return len(t.Datetime) }

// Columns returns the columns in insertion order
func (t *SensorTable) Columns() []Column { return t.columns }

// Column looks a column up by kind
func (t *SensorTable) Column(kind Kind) (Column, bool) {
	i, ok := t.byKind[kind]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// AddColumn attaches an existing column. A column of the same kind must not
// already be present.
func (t *SensorTable) AddColumn(c Column) error {
	if _, ok := t.byKind[c.Kind()]; ok {
		return fmt.Errorf("sensors: table %s already has column %s", t.Name, c.Kind())
	}
	t.byKind[c.Kind()] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// ColumnOf returns the T-typed column of the given kind, creating it when
// absent.
func ColumnOf[T Element](t *SensorTable, kind Kind) (*Series[T], error) {
	if c, ok := t.Column(kind); ok {
		s, ok := c.(*Series[T])
		if !ok {
			return nil, fmt.Errorf("%w: %s is %s, not %s",
				ErrColumnType, kind, c.ElementType(), elementTypeOf[T]())
		}
		return s, nil
	}
	s := NewSeries[T](kind)
	if err := t.AddColumn(s); err != nil {
		return nil, err
	}
	return s, nil
}

// MustColumn is ColumnOf for decoders that own the table and never mix
// element types for a kind.
func MustColumn[T Element](t *SensorTable, kind Kind) *Series[T] {
	s, err := ColumnOf[T](t, kind)
	if err != nil {
		panic(err)
	}
	return s
}

// Multiplicity returns the number of values per row of c
func (t *SensorTable) Multiplicity(c Column) (int, error) {
	dt := len(t.Datetime)
	if dt == 0 {
		if c.Len() == 0 {
			return 1, nil
		}
		return 0, fmt.Errorf("%w: column %s has %d values but table %s has no rows",
			ErrShapeMismatch, c.Kind(), c.Len(), t.Name)
	}
	if c.Len() == 0 || c.Len()%dt != 0 {
		return 0, fmt.Errorf("%w: column %s has %d values for %d rows in table %s",
			ErrShapeMismatch, c.Kind(), c.Len(), dt, t.Name)
	}
	return c.Len() / dt, nil
}

// Validate checks every column against the datetime axis
func (t *SensorTable) Validate() error {
	for _, c := range t.columns {
		if _, err := t.Multiplicity(c); err != nil {
			return err
		}
	}
	return nil
}
