package extract

import (
	"log"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"

	"datasoph/internal/models"
)

// ChartFileName is the well-known correlation artifact name inside the
// figures directory. It is overwritten on every analysis.
const ChartFileName = "correlation.png"

// AnalyzeTable computes the summary for a loaded table and, when at least two
// numeric columns exist, renders the correlation heatmap under figuresDir.
// Chart rendering is best effort: its failure never fails the extraction.
func AnalyzeTable(t *Table, figuresDir string) *models.TabularResult {
	res := &models.TabularResult{
		Rows:    t.Rows,
		Columns: t.ColumnNames(),
		Dtypes:  make(map[string]string, len(t.Columns)),
		Missing: make(map[string]int, len(t.Columns)),
		Summary: make(map[string]models.ColumnStats),
	}
	for i := range t.Columns {
		col := &t.Columns[i]
		res.Dtypes[col.Name] = col.Dtype()
		res.Missing[col.Name] = col.MissingCount()
		if col.Numeric {
			res.Summary[col.Name] = describe(col.Present())
		}
	}

	if numeric := t.NumericColumns(); len(numeric) >= 2 && figuresDir != "" {
		path := filepath.Join(figuresDir, ChartFileName)
		if err := renderCorrelationHeatmap(numeric, path); err != nil {
			log.Printf("correlation chart failed: %v", err)
		} else {
			res.ChartPath = path
		}
	}
	return res
}

// describe mirrors pandas describe() for one numeric column. Non-finite
// results become nil so the payload stays JSON-safe.
func describe(values []float64) models.ColumnStats {
	stats := models.ColumnStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	stats.Mean = finite(stat.Mean(values, nil))
	stats.Std = finite(stat.StdDev(values, nil))
	stats.Min = finite(sorted[0])
	stats.Q25 = finite(stat.Quantile(0.25, stat.LinInterp, sorted, nil))
	stats.Q50 = finite(stat.Quantile(0.5, stat.LinInterp, sorted, nil))
	stats.Q75 = finite(stat.Quantile(0.75, stat.LinInterp, sorted, nil))
	stats.Max = finite(sorted[len(sorted)-1])
	return stats
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// correlationMatrix computes pairwise Pearson correlations over rows where
// both columns are present.
func correlationMatrix(cols []*Column) [][]float64 {
	n := len(cols)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var xs, ys []float64
			for k := 0; k < len(cols[i].Values) && k < len(cols[j].Values); k++ {
				x, y := cols[i].Values[k], cols[j].Values[k]
				if math.IsNaN(x) || math.IsNaN(y) {
					continue
				}
				xs = append(xs, x)
				ys = append(ys, y)
			}
			r := math.NaN()
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			m[i][j] = r
			m[j][i] = r
		}
	}
	return m
}
