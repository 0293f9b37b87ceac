package models

// Scene is everything needed to draw one scatter plot.
type Scene struct {
	Year   int       `json:"year"`
	X      string    `json:"x"`
	Y      string    `json:"y"`
	Title  string    `json:"title"`
	XRange AxisRange `json:"x_range"`
	YRange AxisRange `json:"y_range"`
	Points []Point   `json:"points"`
}

type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Point struct {
	Entity string  `json:"entity,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type YearsInfo struct {
	First    int    `json:"first"`
	Last     int    `json:"last"`
	Default  int    `json:"default"`
	DefaultX string `json:"default_x"`
	DefaultY string `json:"default_y"`
}

type ColumnsInfo struct {
	Year    int                 `json:"year"`
	Labels  map[string][]string `json:"labels"`
	Options []string            `json:"options"`
}

type Selection struct {
	Year       int      `json:"year"`
	X          string   `json:"x"`
	Y          string   `json:"y"`
	XAvailable bool     `json:"x_available"`
	YAvailable bool     `json:"y_available"`
	Options    []string `json:"options"`
}

type ErrorBody struct {
	Error  string `json:"error"`
	Column string `json:"column,omitempty"`
}
