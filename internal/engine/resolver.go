package engine

import (
	"fmt"
	"regexp"
	"strconv"
)

// Label is the year-independent name of an indicator, e.g. "GNI Female".
type Label string

const (
	LabelHDI                     Label = "HDI"
	LabelLifeExpectancy          Label = "Life Expectancy"
	LabelExpectedSchooling       Label = "Expected Schooling"
	LabelMeanSchooling           Label = "Mean Schooling"
	LabelGNI                     Label = "GNI"
	LabelGDI                     Label = "GDI"
	LabelHDIFemale               Label = "HDI Female"
	LabelLifeExpectancyFemale    Label = "Life Expectancy Female"
	LabelExpectedSchoolingFemale Label = "Expected Schooling Female"
	LabelMeanSchoolingFemale     Label = "Mean Schooling Female"
	LabelGNIFemale               Label = "GNI Female"
	LabelHDIMale                 Label = "HDI Male"
	LabelLifeExpectancyMale      Label = "Life Expectancy Male"
	LabelExpectedSchoolingMale   Label = "Expected Schooling Male"
	LabelMeanSchoolingMale       Label = "Mean Schooling Male"
	LabelGNIMale                 Label = "GNI Male"
	LabelHDIAdjusted             Label = "HDI Adjusted"
	LabelInequality              Label = "Inequality"
	LabelLoss                    Label = "Loss"
)

// Variable binds a label to the column name it takes in a given year.
type Variable struct {
	Label   Label
	Pattern func(year int) string
}

func yearly(prefix string) func(int) string {
	return func(year int) string { return fmt.Sprintf("%s (%d)", prefix, year) }
}

// Variables is the fixed enumeration offered in the X/Y selectors, in display order.
var Variables = []Variable{
	{LabelHDI, yearly("Human Development Index")},
	{LabelLifeExpectancy, yearly("Life Expectancy at Birth")},
	{LabelExpectedSchooling, yearly("Expected Years of Schooling")},
	{LabelMeanSchooling, yearly("Mean Years of Schooling")},
	{LabelGNI, yearly("Gross National Income Per Capita")},
	{LabelGDI, yearly("Gender Development Index")},
	{LabelHDIFemale, yearly("HDI female")},
	{LabelLifeExpectancyFemale, yearly("Gross Life Expectancy at Birth, female")},
	{LabelExpectedSchoolingFemale, yearly("Expected Years of Schooling, female")},
	{LabelMeanSchoolingFemale, yearly("Mean Years of Schooling, female")},
	{LabelGNIFemale, yearly("Gross National Income Per Capita, female")},
	{LabelHDIMale, yearly("HDI male")},
	{LabelLifeExpectancyMale, yearly("Gross Life Expectancy at Birth, male")},
	{LabelExpectedSchoolingMale, yearly("Expected Years of Schooling, male")},
	{LabelMeanSchoolingMale, yearly("Mean Years of Schooling, male")},
	{LabelGNIMale, yearly("Gross National Income Per Capita, male")},
	{LabelHDIAdjusted, yearly("Inequality-adjusted Human Development Index")},
	{LabelInequality, yearly("Coefficient of human inequality")},
	// The source header carries two spaces before the year.
	{LabelLoss, yearly("Overall loss (%) ")},
}

// YearRange is an inclusive span of years.
type YearRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// SupportedYears is the span the slider covers.
var SupportedYears = YearRange{First: 1990, Last: 2021}

func (r YearRange) Contains(year int) bool { return year >= r.First && year <= r.Last }

// Years lists every year in the range in ascending order.
func (r YearRange) Years() []int {
	if r.Last < r.First {
		return nil
	}
	out := make([]int, 0, r.Last-r.First+1)
	for y := r.First; y <= r.Last; y++ {
		out = append(out, y)
	}
	return out
}

func (r YearRange) Validate() error {
	if r.First > r.Last {
		return fmt.Errorf("invalid year range %d..%d", r.First, r.Last)
	}
	return nil
}

// trailing "(YYYY)" token of a year-parameterized column
var yearToken = regexp.MustCompile(`\((\d{4})\)\s*$`)

// ColumnYear extracts the year embedded at the end of a column name.
func ColumnYear(column string) (int, bool) {
	m := yearToken.FindStringSubmatch(column)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}

// WithYear rewrites the year token of column, without checking existence.
// Columns without a token come back unchanged with ok=false.
func WithYear(column string, year int) (string, bool) {
	loc := yearToken.FindStringIndex(column)
	if loc == nil {
		return column, false
	}
	return fmt.Sprintf("%s(%d)", column[:loc[0]], year), true
}

// Family is the column name with its year token blanked out; every year of a
// variable shares one family.
func Family(column string) string {
	loc := yearToken.FindStringIndex(column)
	if loc == nil {
		return column
	}
	return column[:loc[0]] + "(YYYY)"
}

// Resolver maps labels and years onto the columns of one dataset.
type Resolver struct {
	ds     *Dataset
	years  YearRange
	bounds *boundsCache
}

func NewResolver(ds *Dataset, years YearRange) *Resolver {
	return &Resolver{ds: ds, years: years, bounds: newBoundsCache()}
}

func (r *Resolver) Dataset() *Dataset { return r.ds }

func (r *Resolver) Years() YearRange { return r.years }

// ColumnsForYear returns, for every label, the columns backing it in year.
// Labels without a column map to an empty list; years outside the supported
// range map every label to an empty list.
func (r *Resolver) ColumnsForYear(year int) map[Label][]string {
	out := make(map[Label][]string, len(Variables))
	for _, v := range Variables {
		out[v.Label] = []string{}
	}
	if !r.years.Contains(year) {
		return out
	}
	want := make(map[string]Label, len(Variables))
	for _, v := range Variables {
		want[v.Pattern(year)] = v.Label
	}
	for _, name := range r.ds.names {
		if label, ok := want[name]; ok {
			out[label] = append(out[label], name)
		}
	}
	return out
}

// SelectableColumns flattens ColumnsForYear in enumeration order.
func (r *Resolver) SelectableColumns(year int) []string {
	byLabel := r.ColumnsForYear(year)
	out := make([]string, 0, len(Variables))
	for _, v := range Variables {
		out = append(out, byLabel[v.Label]...)
	}
	return out
}

// Resolve looks up the column for label in year.
func (r *Resolver) Resolve(label Label, year int) (string, bool) {
	if !r.years.Contains(year) {
		return "", false
	}
	for _, v := range Variables {
		if v.Label == label {
			name := v.Pattern(year)
			return name, r.ds.HasColumn(name)
		}
	}
	return "", false
}

// SubstituteYear moves an existing column to the same variable in another
// year. The rewritten name is returned even when ok is false so callers can
// still show what was asked for.
func (r *Resolver) SubstituteYear(column string, year int) (string, bool) {
	name, ok := WithYear(column, year)
	if !ok {
		return column, false
	}
	return name, r.ds.HasColumn(name)
}
