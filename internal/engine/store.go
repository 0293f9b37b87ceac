package engine

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// Dataset holds the indicator table as a single arrow record.
// Year-parameterized columns are nullable float64, every other column is utf8.
// A Dataset is never mutated after load and is safe for concurrent readers.
type Dataset struct {
	record arrow.Record

	// Column lookup (name -> position in record)
	names []string
	index map[string]int

	// Typed views, keyed by column name
	numeric map[string]*array.Float64
	text    map[string]*array.String
}

func newDataset(rec arrow.Record) *Dataset {
	ds := &Dataset{
		record:  rec,
		names:   make([]string, rec.NumCols()),
		index:   make(map[string]int, rec.NumCols()),
		numeric: make(map[string]*array.Float64),
		text:    make(map[string]*array.String),
	}
	for i, f := range rec.Schema().Fields() {
		ds.names[i] = f.Name
		ds.index[f.Name] = i
		switch col := rec.Column(i).(type) {
		case *array.Float64:
			ds.numeric[f.Name] = col
		case *array.String:
			ds.text[f.Name] = col
		}
	}
	return ds
}

// Release drops the underlying arrow buffers.
func (d *Dataset) Release() {
	if d.record != nil {
		d.record.Release()
		d.record = nil
	}
}

func (d *Dataset) NumRows() int { return int(d.record.NumRows()) }

// Columns returns the header names in file order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Float64 returns the numeric column called name.
func (d *Dataset) Float64(name string) (*array.Float64, error) {
	if col, ok := d.numeric[name]; ok {
		return col, nil
	}
	if d.HasColumn(name) {
		return nil, &ColumnError{Column: name, Err: ErrNotNumeric}
	}
	return nil, missingColumn(name)
}

// Text returns the value of a static column at row; false for nulls and
// unknown columns.
func (d *Dataset) Text(name string, row int) (string, bool) {
	col, ok := d.text[name]
	if !ok || row < 0 || row >= col.Len() || col.IsNull(row) {
		return "", false
	}
	return col.Value(row), true
}
