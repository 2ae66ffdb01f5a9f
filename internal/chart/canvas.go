// Package chart draws small SVG bar charts with gonum/plot. A Canvas wraps a
// vgsvg drawing surface and must be closed after the SVG has been taken.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

var ErrCanvasClosed = errors.New("canvas is closed")

var open atomic.Int64

// Canvas is a drawing surface of fixed size in points.
type Canvas struct {
	Width, Height int
	svg           *vgsvg.Canvas
}

// NewCanvas acquires a drawing surface.
func NewCanvas(width, height int) *Canvas {
	open.Add(1)
	return &Canvas{
		Width:  width,
		Height: height,
		svg:    vgsvg.New(vg.Points(float64(width)), vg.Points(float64(height))),
	}
}

// Open reports how many canvases have been acquired and not yet closed.
func Open() int64 {
	return open.Load()
}

func (c *Canvas) drawArea() (draw.Canvas, error) {
	if c.svg == nil {
		return draw.Canvas{}, ErrCanvasClosed
	}
	return draw.New(c.svg), nil
}

// SVG returns the finished document.
func (c *Canvas) SVG() (string, error) {
	if c.svg == nil {
		return "", ErrCanvasClosed
	}
	var buf bytes.Buffer
	if _, err := c.svg.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encode svg: %w", err)
	}
	return buf.String(), nil
}

// Close releases the surface. Closing twice is a no-op.
func (c *Canvas) Close() error {
	if c.svg == nil {
		return nil
	}
	c.svg = nil
	open.Add(-1)
	return nil
}
