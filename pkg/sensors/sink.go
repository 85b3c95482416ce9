package sensors

// MetadataEntry is one key/value emitted by a decoder. Value is a string,
// an integer or a float64.
type MetadataEntry struct {
	Category string
	Key      string
	Value    any
}

// Sink receives decoder output. A decoder calls Table at most once per
// logical table per source file, after the table is complete.
type Sink interface {
	Metadata(entry MetadataEntry) error
	Table(table *SensorTable) error
}

// SinkFuncs adapts a pair of functions to Sink. Nil functions discard.
type SinkFuncs struct {
	MetadataFunc func(MetadataEntry) error
	TableFunc    func(*SensorTable) error
}

// Metadata implements Sink
func (f SinkFuncs) Metadata(entry MetadataEntry) error {
	if f.MetadataFunc == nil {
		return nil
	}
	return f.MetadataFunc(entry)
}

// Table implements Sink
func (f SinkFuncs) Table(table *SensorTable) error {
	if f.TableFunc == nil {
		return nil
	}
	return f.TableFunc(table)
}

// Emit validates a table and hands it to the sink. Tables that hold no data
// at all are skipped.
func Emit(sink Sink, table *SensorTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	if table.Len() == 0 {
		return nil
	}
	return sink.Table(table)
}
