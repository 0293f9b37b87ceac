package engine

import (
	"math"

	"hdiexplorer/internal/models"
)

// FilterPoints pairs the x and y columns row by row, dropping any row where
// either value is missing. entity names the static column used to label each
// point and may be empty.
func (d *Dataset) FilterPoints(x, y, entity string) ([]models.Point, error) {
	xs, err := d.Float64(x)
	if err != nil {
		return nil, err
	}
	ys, err := d.Float64(y)
	if err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, xs.Len())
	for i := 0; i < xs.Len(); i++ {
		if xs.IsNull(i) || ys.IsNull(i) {
			continue
		}
		xv, yv := xs.Value(i), ys.Value(i)
		if math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		name, _ := d.Text(entity, i)
		points = append(points, models.Point{Entity: name, X: xv, Y: yv})
	}
	return points, nil
}
