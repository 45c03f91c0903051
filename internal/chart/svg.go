// Package chart renders a valuation as a standalone SVG document: price,
// moving-average baseline and the five zone bands on a log price axis.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"time"

	"ValueZone/internal/model"
)

const (
	width      = 1000
	height     = 580
	padLeft    = 80
	padRight   = 24
	padTop     = 56
	padBottom  = 56
	bandAlpha  = 0.2
	plotWidth  = width - padLeft - padRight
	plotHeight = height - padTop - padBottom
)

var errNothingToDraw = errors.New("chart: analysis has no price data or bands")

// Render writes an SVG chart of a to w.
func Render(w io.Writer, a *model.Analysis) error {
	if a == nil || a.Series == nil || a.Series.Len() == 0 || len(a.Bands) == 0 {
		return errNothingToDraw
	}

	c := newCanvas(a)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%d" height="%d" fill="white"/>`+"\n", width, height)
	fmt.Fprintf(&buf, `<text x="%d" y="30" font-size="18" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
		width/2, html.EscapeString(Title(a)))

	c.bands(&buf, a)
	c.grid(&buf)
	c.priceLine(&buf, a.Series)
	c.baselineLine(&buf, a.Baseline)
	c.legend(&buf, a)

	fmt.Fprintf(&buf, `<text x="%d" y="%d" font-size="12" text-anchor="middle">Date</text>`+"\n",
		padLeft+plotWidth/2, height-12)
	fmt.Fprintf(&buf, `<text x="18" y="%d" font-size="12" text-anchor="middle" transform="rotate(-90 18 %d)">Price (Log Scale)</text>`+"\n",
		padTop+plotHeight/2, padTop+plotHeight/2)
	buf.WriteString("</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

type canvas struct {
	t0, t1 time.Time
	lo, hi float64 // price domain, both > 0
}

func newCanvas(a *model.Analysis) *canvas {
	pts := a.Series.Points
	c := &canvas{t0: pts[0].Time, t1: pts[len(pts)-1].Time, lo: math.Inf(1), hi: math.Inf(-1)}

	include := func(v float64) {
		if v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			c.lo = math.Min(c.lo, v)
			c.hi = math.Max(c.hi, v)
		}
	}
	for _, p := range pts {
		include(p.Close)
	}
	for _, v := range a.Baseline.Values {
		if v.Defined {
			include(v.Value)
		}
	}
	for _, b := range a.Bands {
		include(b.Lower)
		include(drawnUpper(b, a.Bands))
	}

	c.lo *= 0.9
	c.hi *= 1.1
	if c.hi <= c.lo {
		c.hi = c.lo * 10
	}
	return c
}

// drawnUpper caps the open-ended band at twice the larger of the expensive
// band's upper bound and its own lower bound.
func drawnUpper(b model.ValuationBand, all []model.ValuationBand) float64 {
	if !b.Unbounded() {
		return b.Upper
	}
	top := 2 * b.Lower
	for _, other := range all {
		if other.Name == model.ZoneExpensive {
			top = math.Max(top, 2*other.Upper)
		}
	}
	return top
}

func (c *canvas) x(t time.Time) float64 {
	span := c.t1.Sub(c.t0)
	if span <= 0 {
		return padLeft + plotWidth/2
	}
	return padLeft + plotWidth*float64(t.Sub(c.t0))/float64(span)
}

func (c *canvas) y(v float64) float64 {
	v = math.Min(math.Max(v, c.lo), c.hi)
	frac := (math.Log(v) - math.Log(c.lo)) / (math.Log(c.hi) - math.Log(c.lo))
	return padTop + plotHeight*(1-frac)
}

func (c *canvas) bands(buf *bytes.Buffer, a *model.Analysis) {
	for _, z := range LegendOrder() {
		b, ok := a.Band(z)
		if !ok {
			continue
		}
		top, bottom := c.y(drawnUpper(b, a.Bands)), c.y(b.Lower)
		if bottom-top <= 0 {
			continue
		}
		fmt.Fprintf(buf, `<rect class="band" data-zone="%s" x="%d" y="%.2f" width="%d" height="%.2f" fill="%s" fill-opacity="%.1f"/>`+"\n",
			z, padLeft, top, plotWidth, bottom-top, Color(z), bandAlpha)
	}
}

func (c *canvas) grid(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#444"/>`+"\n",
		padLeft, padTop, plotWidth, plotHeight)

	for _, v := range logTicks(c.lo, c.hi) {
		y := c.y(v)
		fmt.Fprintf(buf, `<line x1="%d" y1="%.2f" x2="%d" y2="%.2f" stroke="#000" stroke-opacity="0.15"/>`+"\n",
			padLeft, y, padLeft+plotWidth, y)
		fmt.Fprintf(buf, `<text x="%d" y="%.2f" font-size="11" text-anchor="end">%s</text>`+"\n",
			padLeft-6, y+4, formatPrice(v))
	}

	for _, t := range yearTicks(c.t0, c.t1) {
		x := c.x(t)
		fmt.Fprintf(buf, `<line x1="%.2f" y1="%d" x2="%.2f" y2="%d" stroke="#000" stroke-opacity="0.15"/>`+"\n",
			x, padTop, x, padTop+plotHeight)
		fmt.Fprintf(buf, `<text x="%.2f" y="%d" font-size="11" text-anchor="middle">%d</text>`+"\n",
			x, padTop+plotHeight+16, t.Year())
	}
}

func (c *canvas) priceLine(buf *bytes.Buffer, s *model.PriceSeries) {
	var d bytes.Buffer
	for i, p := range s.Points {
		cmd := 'L'
		if i == 0 {
			cmd = 'M'
		}
		fmt.Fprintf(&d, "%c%.2f %.2f ", cmd, c.x(p.Time), c.y(p.Close))
	}
	fmt.Fprintf(buf, `<path class="price" d="%s" fill="none" stroke="black" stroke-width="1.5"/>`+"\n",
		bytes.TrimSpace(d.Bytes()))
}

// baselineLine draws the defined stretches of the baseline, starting a new
// subpath after every undefined value.
func (c *canvas) baselineLine(buf *bytes.Buffer, b model.Baseline) {
	var d bytes.Buffer
	pen := false
	for _, v := range b.Values {
		if !v.Defined {
			pen = false
			continue
		}
		cmd := 'L'
		if !pen {
			cmd = 'M'
			pen = true
		}
		fmt.Fprintf(&d, "%c%.2f %.2f ", cmd, c.x(v.Time), c.y(v.Value))
	}
	if d.Len() == 0 {
		return
	}
	path := bytes.TrimSpace(d.Bytes())
	fmt.Fprintf(buf, `<path d="%s" fill="none" stroke="#333" stroke-width="3.5"/>`+"\n", path)
	fmt.Fprintf(buf, `<path class="baseline" d="%s" fill="none" stroke="white" stroke-width="2"/>`+"\n", path)
}

func baselineLabel(window int) string {
	if window <= 0 {
		return "Moving Average"
	}
	return fmt.Sprintf("%dW Moving Average", window)
}

func (c *canvas) legend(buf *bytes.Buffer, a *model.Analysis) {
	type entry struct {
		label, swatch string
	}
	entries := []entry{
		{html.EscapeString(a.Symbol) + " Price", `stroke="black" stroke-width="2"`},
		{baselineLabel(a.Window), `stroke="#333" stroke-width="3"`},
	}
	for _, z := range LegendOrder() {
		entries = append(entries, entry{Label(z) + " Zone", fmt.Sprintf(`fill="%s" fill-opacity="%.1f"`, Color(z), bandAlpha*2)})
	}

	x, y := padLeft+10, padTop+10
	fmt.Fprintf(buf, `<g class="legend"><rect x="%d" y="%d" width="190" height="%d" fill="white" fill-opacity="0.85" stroke="#999"/>`+"\n",
		x, y, 10+18*len(entries))
	for i, e := range entries {
		ey := y + 16 + 18*i
		if i < 2 {
			fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d" %s/>`, x+8, ey-4, x+30, ey-4, e.swatch)
		} else {
			fmt.Fprintf(buf, `<rect x="%d" y="%d" width="22" height="10" %s/>`, x+8, ey-9, e.swatch)
		}
		fmt.Fprintf(buf, `<text x="%d" y="%d" font-size="12">%s</text>`+"\n", x+38, ey, e.label)
	}
	buf.WriteString("</g>\n")
}

// logTicks returns 1-2-5 steps of each decade inside [lo, hi].
func logTicks(lo, hi float64) []float64 {
	var ticks []float64
	for exp := math.Floor(math.Log10(lo)); exp <= math.Ceil(math.Log10(hi)); exp++ {
		base := math.Pow(10, exp)
		for _, m := range []float64{1, 2, 5} {
			if v := m * base; v >= lo && v <= hi {
				ticks = append(ticks, v)
			}
		}
	}
	return ticks
}

// yearTicks returns January 1st of each year inside (t0, t1], thinned so
// no more than about a dozen labels are drawn.
func yearTicks(t0, t1 time.Time) []time.Time {
	first, last := t0.Year()+1, t1.Year()
	step := 1
	if n := last - first + 1; n > 12 {
		step = (n + 11) / 12
	}
	var ticks []time.Time
	for y := first; y <= last; y += step {
		ticks = append(ticks, time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC))
	}
	return ticks
}

func formatPrice(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("%.0f", v)
	case v >= 1:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%.2g", v)
	}
}
