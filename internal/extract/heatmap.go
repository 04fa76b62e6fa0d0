package extract

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ.
type corrGrid struct {
	names []string
	m     [][]float64
}

func (g corrGrid) Dims() (int, int) { return len(g.names), len(g.names) }
func (g corrGrid) X(c int) float64  { return float64(c) }
func (g corrGrid) Y(r int) float64  { return float64(r) }

func (g corrGrid) Z(c, r int) float64 {
	v := g.m[r][c]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// renderCorrelationHeatmap writes the pairwise correlation heatmap of the
// given numeric columns as a PNG.
func renderCorrelationHeatmap(cols []*Column, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir figures: %w", err)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	grid := corrGrid{names: names, m: correlationMatrix(cols)}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min = -1
	hm.Max = 1

	p := plot.New()
	p.Title.Text = "Correlation Matrix"
	p.Add(hm)
	p.NominalX(names...)
	p.NominalY(names...)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
