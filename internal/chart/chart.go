// Package chart draws the close price and SMA lines of one symbol as a PNG.
package chart

import (
	"fmt"
	"io"

	"IndexNotifier/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Options controls the output image size.
type Options struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions renders an 8x4 inch image.
func DefaultOptions() Options {
	return Options{Width: 8 * vg.Inch, Height: 4 * vg.Inch}
}

// Render plots the last datapoints bars of sym (close plus one line per SMA window)
// into w, then rewinds w to offset 0 so the image can be read back from the start.
func Render(w io.WriteSeeker, sym *model.Symbol, datapoints int, opts Options) error {
	if datapoints <= 0 {
		return fmt.Errorf("%w: datapoints must be positive, got %d", model.ErrRender, datapoints)
	}
	n := len(sym.Bars)
	if n == 0 {
		return fmt.Errorf("%w: %s has no price data to plot", model.ErrRender, sym.Name)
	}
	start := n - datapoints
	if start < 0 {
		start = 0
	}

	p := plot.New()
	p.Title.Text = sym.Name
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	// only the bottom axis line stays visible
	p.Y.LineStyle.Width = 0
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	closes := make(plotter.XYs, 0, n-start)
	for i := start; i < n; i++ {
		closes = append(closes, plotter.XY{X: float64(sym.Bars[i].Time.Unix()), Y: sym.Bars[i].Close})
	}
	if err := addLine(p, "Close", closes, 0); err != nil {
		return err
	}

	for j, avg := range sym.Averages {
		pts := make(plotter.XYs, 0, n-start)
		for i := start; i < n && i < len(avg.SMA); i++ {
			if !avg.SMA[i].Valid {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(sym.Bars[i].Time.Unix()), Y: avg.SMA[i].Float64})
		}
		if len(pts) == 0 {
			continue
		}
		if err := addLine(p, fmt.Sprintf("SMA%d", avg.Window), pts, j+1); err != nil {
			return err
		}
	}

	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return fmt.Errorf("%w: encode chart: %w", model.ErrRender, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("%w: write chart: %w", model.ErrRender, err)
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: rewind chart: %w", model.ErrRender, err)
	}
	return nil
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, colorIdx int) error {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%w: %s line: %w", model.ErrRender, label, err)
	}
	l.LineStyle.Color = plotutil.Color(colorIdx)
	l.LineStyle.Width = vg.Points(1.5)
	p.Add(l)
	p.Legend.Add(label, l)
	return nil
}
