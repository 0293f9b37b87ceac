package engine

import (
	"math"
	"sync"

	"hdiexplorer/internal/models"

	"github.com/apache/arrow/go/v18/arrow/array"
)

// Extent is the min/max of the non-missing values seen so far.
type Extent struct {
	Min   float64
	Max   float64
	Count int
}

func (e Extent) Valid() bool { return e.Count > 0 }

func (e Extent) merge(o Extent) Extent {
	if !o.Valid() {
		return e
	}
	if !e.Valid() {
		return o
	}
	return Extent{
		Min:   math.Min(e.Min, o.Min),
		Max:   math.Max(e.Max, o.Max),
		Count: e.Count + o.Count,
	}
}

func columnExtent(col *array.Float64) Extent {
	var e Extent
	vals := col.Float64Values()
	for i, v := range vals {
		if col.IsNull(i) || math.IsNaN(v) {
			continue
		}
		if e.Count == 0 || v < e.Min {
			e.Min = v
		}
		if e.Count == 0 || v > e.Max {
			e.Max = v
		}
		e.Count++
	}
	return e
}

// GlobalExtent aggregates column's variable across every year of the range.
// Years where the column is absent or entirely missing contribute nothing.
// A column without a year token is measured on its own.
func (r *Resolver) GlobalExtent(column string) Extent {
	if _, ok := ColumnYear(column); !ok {
		col, err := r.ds.Float64(column)
		if err != nil {
			return Extent{}
		}
		return columnExtent(col)
	}

	years := r.years.Years()
	partial := make([]Extent, len(years))

	// One scan per year, merged in year order
	var wg sync.WaitGroup
	for i, year := range years {
		name, ok := r.SubstituteYear(column, year)
		if !ok {
			continue
		}
		col, err := r.ds.Float64(name)
		if err != nil {
			continue
		}
		wg.Add(1)
		go func(idx int, col *array.Float64) {
			defer wg.Done()
			partial[idx] = columnExtent(col)
		}(i, col)
	}
	wg.Wait()

	var total Extent
	for _, p := range partial {
		total = total.merge(p)
	}
	return total
}

// Pad widens an extent by fraction of its span on both sides.
func Pad(e Extent, fraction float64) models.AxisRange {
	if !e.Valid() {
		return models.AxisRange{Min: 0, Max: 1}
	}
	span := e.Max - e.Min
	if span == 0 {
		return models.AxisRange{Min: e.Min - 0.5, Max: e.Max + 0.5}
	}
	margin := fraction * span
	return models.AxisRange{Min: e.Min - margin, Max: e.Max + margin}
}

// Bounds are the padded axis ranges of an X/Y pair.
type Bounds struct {
	X models.AxisRange
	Y models.AxisRange
}

type boundsKey struct {
	x, y     string
	fraction float64
}

type boundsCache struct {
	mu      sync.Mutex
	entries map[boundsKey]Bounds
}

func newBoundsCache() *boundsCache {
	return &boundsCache{entries: make(map[boundsKey]Bounds)}
}

// StableBounds returns axis bounds that depend only on the variables behind
// x and y, never on the year they were picked in.
func (r *Resolver) StableBounds(x, y string, fraction float64) Bounds {
	key := boundsKey{x: Family(x), y: Family(y), fraction: fraction}

	r.bounds.mu.Lock()
	b, ok := r.bounds.entries[key]
	r.bounds.mu.Unlock()
	if ok {
		return b
	}

	b = Bounds{
		X: Pad(r.GlobalExtent(x), fraction),
		Y: Pad(r.GlobalExtent(y), fraction),
	}

	r.bounds.mu.Lock()
	r.bounds.entries[key] = b
	r.bounds.mu.Unlock()
	return b
}
