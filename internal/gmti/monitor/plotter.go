package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/gmti.report/internal/gmti"
)

var (
	powerLineColor = color.RGBA{R: 30, G: 200, B: 255, A: 255}
	detectionColor = color.RGBA{R: 255, G: 170, B: 40, A: 255}
)

// SavePowerProfilePNG renders the range power profile as a line plot.
func SavePowerProfilePNG(profile []float64, path string) error {
	if len(profile) == 0 {
		return fmt.Errorf("power profile is empty")
	}

	p := plot.New()
	p.Title.Text = "Power Profile"
	p.X.Label.Text = "Range bin"
	p.Y.Label.Text = "Power"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(profile))
	for i, pow := range profile {
		xys[i].X = float64(i)
		xys[i].Y = pow
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("create power profile line: %w", err)
	}
	line.Color = powerLineColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("power", line)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save power profile plot: %w", err)
	}
	return nil
}

// SaveDetectionsPNG renders detections as a range/doppler scatter. Glyph size
// tracks SNR so strong returns stand out.
func SaveDetectionsPNG(records []gmti.DetectionRecord, path string) error {
	if len(records) == 0 {
		return fmt.Errorf("no detections to plot")
	}

	p := plot.New()
	p.Title.Text = "Detections"
	p.X.Label.Text = "Range (m)"
	p.Y.Label.Text = "Doppler (m/s)"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(records))
	for i, rec := range records {
		xys[i].X = rec.RangeM
		xys[i].Y = rec.DopplerMps
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("create detections scatter: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  detectionColor,
			Radius: snrRadius(records[i].SnrDb),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(scatter)
	p.Legend.Add("detections", scatter)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save detections plot: %w", err)
	}
	return nil
}

// snrRadius maps SNR in dB to a glyph radius, clamped to keep weak and
// saturated returns readable on the same plot.
func snrRadius(snr float64) vg.Length {
	r := 1.5 + snr*0.08
	if r < 2 {
		r = 2
	}
	if r > 9 {
		r = 9
	}
	return vg.Points(r)
}
