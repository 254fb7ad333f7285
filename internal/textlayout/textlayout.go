// Package textlayout fits a single line of text into a horizontal band of a
// canvas and rasterizes it glyph by glyph.
//
// The font size is chosen by a shrink-only search: start from a size
// proportional to the band height and multiply by [ShrinkFactor] until the
// line fits between the margins or the size reaches [MinFontSize]. Each
// glyph's coverage mask is alpha-blended over the existing pixels.
//
// Glyph shapes and metrics come from a [GlyphSource]. The package does not
// know where fonts come from.
package textlayout

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"tools.zach/dev/qrbrand/internal/canvas"
)

// Layout constants.
const (
	// MarginFraction is the horizontal margin as a fraction of canvas width.
	MarginFraction = 0.06
	// MinMargin is the smallest horizontal margin in pixels.
	MinMargin = 24
	// InitialSizeFraction is the starting font size as a fraction of the
	// band height.
	InitialSizeFraction = 0.35
	// MinInitialSize is the smallest starting font size in pixels.
	MinInitialSize = 18
	// MinFontSize is the size at which shrinking stops even if the text
	// still overflows.
	MinFontSize = 14
	// ShrinkFactor is applied to the font size on every fitting step.
	ShrinkFactor = 0.92
)

// ///////////////////////////////////////////////
// Glyph Source
// ///////////////////////////////////////////////

// GlyphSource produces font faces at arbitrary pixel sizes.
type GlyphSource interface {
	// Face returns a face scaled so that one em is size pixels.
	Face(size float64) (Face, error)
}

// Face exposes the metrics and coverage of glyphs at one size.
type Face interface {
	// Advance returns the horizontal advance of r in pixels.
	Advance(r rune) float64
	// Kern returns the kerning adjustment between prev and r in pixels.
	Kern(prev, r rune) float64
	// Metrics returns the ascent (positive, above the baseline) and descent
	// (zero or negative, below the baseline) in pixels.
	Metrics() (ascent, descent float64)
	// Glyph rasterizes r with its origin at (x, baseline) and calls fn for
	// every pixel the glyph covers, with coverage v in (0, 1].
	Glyph(x, baseline float64, r rune, fn func(px, py int, v float64))
	// Close releases resources held by the face.
	Close() error
}

// ErrNoGlyphSource is returned when text is laid out without a glyph source.
var ErrNoGlyphSource = errors.New("no glyph source")

// ///////////////////////////////////////////////
// Layout
// ///////////////////////////////////////////////

// Line is the computed placement of one line of text.
type Line struct {
	// FontSize is the chosen size in pixels per em.
	FontSize float64
	// Width is the rendered width of the text at FontSize.
	Width float64
	// Baseline is the y coordinate of the text baseline.
	Baseline float64
	// StartX is the x coordinate of the pen before the first glyph.
	StartX float64
	// Margin is the horizontal margin in pixels.
	Margin int
	// MaxWidth is the width available between the margins.
	MaxWidth int
}

// Margin returns the horizontal text margin for a canvas of width w.
func Margin(w int) int {
	return max(int(math.Round(float64(w)*MarginFraction)), MinMargin)
}

// InitialSize returns the starting font size for a band of height h.
func InitialSize(h int) float64 {
	return math.Max(math.Round(float64(h)*InitialSizeFraction), MinInitialSize)
}

// Measure returns the width of text set in face: the sum of all glyph
// advances plus the kerning between each adjacent pair, in rune order.
func Measure(face Face, text string) float64 {
	var w float64
	var prev rune
	first := true
	for _, r := range text {
		if !first {
			w += face.Kern(prev, r)
		}
		w += face.Advance(r)
		prev, first = r, false
	}
	return w
}

// Fit picks the font size for text in a band of height bandHeight on a
// canvas of width canvasW. It returns the line geometry with Baseline
// relative to the top of the band, and the face at the chosen size, which
// the caller must close.
func Fit(src GlyphSource, text string, canvasW, bandHeight int) (Line, Face, error) {
	if src == nil {
		return Line{}, nil, ErrNoGlyphSource
	}
	margin := Margin(canvasW)
	maxW := max(canvasW-2*margin, 0)

	size := InitialSize(bandHeight)
	for {
		face, err := src.Face(size)
		if err != nil {
			return Line{}, nil, fmt.Errorf("create face at size %.2f: %w", size, err)
		}
		w := Measure(face, text)
		if w <= float64(maxW) || size <= MinFontSize {
			ascent, descent := face.Metrics()
			textH := math.Ceil(ascent - descent)
			line := Line{
				FontSize: size,
				Width:    w,
				Baseline: float64(bandHeight)/2 + textH/2 - descent,
				StartX:   math.Max((float64(canvasW)-w)/2, float64(margin)),
				Margin:   margin,
				MaxWidth: maxW,
			}
			return line, face, nil
		}
		face.Close()
		size *= ShrinkFactor
	}
}

// Layout computes where text goes in the band [bandTop, bandTop+bandHeight)
// of a canvas of width canvasW.
func Layout(src GlyphSource, text string, canvasW, bandTop, bandHeight int) (Line, error) {
	line, face, err := Fit(src, text, canvasW, bandHeight)
	if err != nil {
		return Line{}, err
	}
	face.Close()
	line.Baseline += float64(bandTop)
	return line, nil
}

// ///////////////////////////////////////////////
// Drawing
// ///////////////////////////////////////////////

// Draw lays out text in the band [bandTop, bandTop+bandHeight) of c and
// blends it in col. Lines too long for the canvas at the minimum size start
// at the left margin and run off the right edge. Pixels outside c are
// skipped.
func Draw(c *canvas.Canvas, src GlyphSource, text string, bandTop, bandHeight int, col color.RGBA) (Line, error) {
	line, face, err := Fit(src, text, c.Width(), bandHeight)
	if err != nil {
		return Line{}, err
	}
	defer face.Close()
	line.Baseline += float64(bandTop)

	plot := func(px, py int, v float64) {
		c.Blend(px, py, col, uint8(math.Round(math.Min(math.Max(v, 0), 1)*255)))
	}

	pen := line.StartX
	var prev rune
	first := true
	for _, r := range text {
		if !first {
			pen += face.Kern(prev, r)
		}
		face.Glyph(pen, line.Baseline, r, plot)
		pen += face.Advance(r)
		prev, first = r, false
	}
	return line, nil
}
