package engine

import (
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// Cells treated as missing values in numeric and text columns.
var nullTokens = []string{"", "NA", "N/A", "..", "NaN", "nan"}

// LoadDataset reads the CSV file at path into an immutable Dataset.
func LoadDataset(path string, mem memory.Allocator) (*Dataset, error) {
	start := time.Now()
	slog.Info("loading dataset", "path", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	ds, err := ParseDataset(content, mem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Info("dataset loaded",
		"rows", ds.NumRows(),
		"columns", len(ds.names),
		"numeric", len(ds.numeric),
		"elapsed", time.Since(start))
	return ds, nil
}

// ParseDataset builds a Dataset from raw CSV bytes. The header decides the
// schema: "<Label> (<year>)" columns are float64, everything else is text.
func ParseDataset(content []byte, mem memory.Allocator) (*Dataset, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	// A. Header pass
	hr := stdcsv.NewReader(bytes.NewReader(content))
	hr.LazyQuotes = true
	header, err := hr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrLoad, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	schema, err := schemaFor(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	// B. Body pass, one record for the whole file
	r := csv.NewReader(bytes.NewReader(content), schema,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithAllocator(mem),
		csv.WithLazyQuotes(true),
		csv.WithNullReader(true, nullTokens...),
	)
	defer r.Release()

	var rec arrow.Record
	if r.Next() {
		rec = r.Record()
		rec.Retain()
	}
	if err := r.Err(); err != nil {
		if rec != nil {
			rec.Release()
		}
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	// C. Header-only file still yields a usable (empty) table
	if rec == nil {
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		rec = b.NewRecord()
	}
	return newDataset(rec), nil
}

func schemaFor(header []string) (*arrow.Schema, error) {
	seen := make(map[string]struct{}, len(header))
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}

		typ := arrow.DataType(arrow.BinaryTypes.String)
		if _, ok := ColumnYear(name); ok {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: name, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}
