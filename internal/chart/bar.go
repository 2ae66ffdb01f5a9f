package chart

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var barFill = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// Bar draws one bar per label on c. Values must be non-negative.
func Bar(c *Canvas, labels []string, values []float64) error {
	if len(labels) != len(values) {
		return errors.New("labels and values differ in length")
	}
	if len(values) == 0 {
		return errors.New("no data to plot")
	}
	for _, v := range values {
		if v < 0 {
			return errors.New("negative values are not supported")
		}
	}

	area, err := c.drawArea()
	if err != nil {
		return err
	}

	p := plot.New()
	p.Y.Min = 0

	barWidth := vg.Points(float64(c.Width)) / vg.Length(2*len(values))
	bars, err := plotter.NewBarChart(plotter.Values(values), barWidth)
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = barFill
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(labels...)
	p.Draw(area)
	return nil
}

// RenderBar draws a bar chart on a fresh canvas, returns the SVG and
// releases the canvas before returning.
func RenderBar(width, height int, labels []string, values []float64) (string, error) {
	c := NewCanvas(width, height)
	defer c.Close()

	if err := Bar(c, labels, values); err != nil {
		return "", err
	}
	return c.SVG()
}
