package veff

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/polarfield-data/radiomc/internal/rundb"
)

// Plot writes the effective volume curve to an image file. Bins without any
// triggered event are skipped since they have no defined volume on the
// logarithmic axis.
func Plot(results []rundb.VeffResult, path string) error {
	pts := make(plotter.XYs, 0, len(results))
	errs := make(plotter.YErrors, 0, len(results))
	for _, r := range results {
		if r.Veff <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: math.Log10(r.Energy), Y: r.Veff})
		errs = append(errs, struct{ Low, High float64 }{r.VeffErr, r.VeffErr})
	}
	if len(pts) == 0 {
		return fmt.Errorf("veff plot: no bins with triggers")
	}

	p := plot.New()
	p.Title.Text = "Effective Volume"
	p.X.Label.Text = "log10(E / eV)"
	p.Y.Label.Text = "Veff (m^3 sr, water equivalent)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("veff plot: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("veff plot: %w", err)
	}
	p.Add(scatter)

	yerr, err := plotter.NewYErrorBars(struct {
		plotter.XYer
		plotter.YErrorer
	}{pts, errs})
	if err != nil {
		return fmt.Errorf("veff plot: %w", err)
	}
	p.Add(yerr)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("veff plot: %w", err)
	}
	return nil
}
