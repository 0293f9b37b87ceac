package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
)

const sampleCSV = `Country,ISO3,Expected Years of Schooling (2020),Life Expectancy at Birth (2020),Life Expectancy at Birth (1990),Human Development Index (2020),Inequality-adjusted Human Development Index (2020)
Alpha,ALP,10,60,40,0.5,0.4
Beta,BET,12,65,85,0.7,
Gamma,GAM,,70,,0.9,0.8
`

func loadSample(t *testing.T, content string) *Dataset {
	t.Helper()
	ds, err := ParseDataset([]byte(content), memory.NewGoAllocator())
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	t.Cleanup(ds.Release)
	return ds
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ds, err := LoadDataset(path, mem)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	defer ds.Release()

	if ds.NumRows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", ds.NumRows())
	}
	if len(ds.Columns()) != 7 {
		t.Fatalf("Expected 7 columns, got %d", len(ds.Columns()))
	}

	school, err := ds.Float64("Expected Years of Schooling (2020)")
	if err != nil {
		t.Fatal(err)
	}
	if school.Value(1) != 12 {
		t.Errorf("Row 1 schooling: expected 12, got %v", school.Value(1))
	}
	if !school.IsNull(2) {
		t.Error("Row 2 schooling should be missing")
	}

	if name, ok := ds.Text("Country", 2); !ok || name != "Gamma" {
		t.Errorf("Row 2 country: got %q (%v)", name, ok)
	}
	if _, err := ds.Float64("Country"); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Country should not be numeric, got %v", err)
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.csv"), nil)
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("Expected ErrLoad, got %v", err)
	}
}

func TestParseDatasetRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"duplicate": "Country,HDI female (2020),HDI female (2020)\nA,1,2\n",
		"malformed": "Country,HDI female (2020)\nA,not-a-number\n",
		"ragged":    "Country,HDI female (2020)\nA,1,2\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataset([]byte(content), memory.NewGoAllocator())
			if !errors.Is(err, ErrLoad) {
				t.Fatalf("Expected ErrLoad, got %v", err)
			}
		})
	}

	_, err := ParseDataset([]byte(cases["duplicate"]), nil)
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("Expected ErrDuplicateColumn, got %v", err)
	}
}

func TestParseDatasetHeaderOnly(t *testing.T) {
	ds := loadSample(t, "Country,HDI female (2020)\n")
	if ds.NumRows() != 0 {
		t.Fatalf("Expected 0 rows, got %d", ds.NumRows())
	}
	if !ds.HasColumn("HDI female (2020)") {
		t.Error("header column missing")
	}
}

func TestParseDatasetNullTokens(t *testing.T) {
	ds := loadSample(t, "Country,HDI male (2000)\nA,..\nB,NA\nC,0.61\n")
	col, err := ds.Float64("HDI male (2000)")
	if err != nil {
		t.Fatal(err)
	}
	if col.NullN() != 2 {
		t.Errorf("Expected 2 nulls, got %d", col.NullN())
	}
}
