package cleaning

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"

	"gocleanse/domain/dataset"
)

// CorrelationMatrix holds pairwise Pearson coefficients of the numeric columns
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Coefficient returns the coefficient for two columns
func (m CorrelationMatrix) Coefficient(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, name := range m.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// MarshalJSON writes undefined coefficients as null
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, values})
}

// Correlation computes Pearson correlation over the rows where both cells are
// present. Pairs with fewer than two such rows or zero variance are NaN.
func Correlation(t *dataset.Table) CorrelationMatrix {
	var numeric []*dataset.Column
	for _, col := range t.Columns() {
		if col.Type == dataset.ValueTypeNumeric {
			numeric = append(numeric, col)
		}
	}

	m := CorrelationMatrix{
		Columns: make([]string, len(numeric)),
		Values:  make([][]float64, len(numeric)),
	}
	for i, col := range numeric {
		m.Columns[i] = col.Name
		m.Values[i] = make([]float64, len(numeric))
	}

	for i := range numeric {
		for j := i; j < len(numeric); j++ {
			r := pairwise(numeric[i], numeric[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwise(a, b *dataset.Column) float64 {
	x := make([]float64, 0, a.Len())
	y := make([]float64, 0, b.Len())
	for i := range a.Values {
		if a.Values[i].IsMissing() || b.Values[i].IsMissing() {
			continue
		}
		x = append(x, a.Values[i].NumericVal)
		y = append(y, b.Values[i].NumericVal)
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
