// Package logo places a logo in the middle of a rendered QR code.
//
// The logo is shrunk (never enlarged) to a square box that is a fraction of
// the QR width. It can be drawn on top of an opaque white plate that keeps
// the area around it clear of modules.
package logo

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"tools.zach/dev/qrbrand/internal/canvas"
)

// Bounds on the logo box as a fraction of the canvas width. Larger logos
// hide too many modules for high error correction to recover.
const (
	MinScale = 0.05
	MaxScale = 0.35
)

// ErrInvalidLogoScale is returned when the logo scale lies outside
// [MinScale, MaxScale].
var ErrInvalidLogoScale = errors.New("invalid logo scale")

// Options controls logo placement.
type Options struct {
	// Scale is the logo box side as a fraction of the canvas width.
	Scale float64
	// Plate draws an opaque white rectangle behind the logo.
	Plate bool
	// Pad is the plate padding as a fraction of the larger logo dimension.
	Pad float64
}

// Placement is the computed geometry of an overlay.
type Placement struct {
	// Logo is where the resized logo lands.
	Logo image.Rectangle
	// Plate is where the plate is drawn, before clipping. Empty when no
	// plate is requested.
	Plate image.Rectangle
}

// ValidateScale checks that scale lies within [MinScale, MaxScale].
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || scale < MinScale || scale > MaxScale {
		return fmt.Errorf("%w: %g must be between %g and %g for scan reliability",
			ErrInvalidLogoScale, scale, MinScale, MaxScale)
	}
	return nil
}

// ///////////////////////////////////////////////
// Resizing
// ///////////////////////////////////////////////

// FitSize returns the dimensions of a w×h image scaled to fit within
// maxW×maxH with its aspect ratio preserved. The scale factor is capped at 1
// and each dimension is at least 1. Zero-sized inputs are returned as-is.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	scale := math.Min(math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h)), 1)
	nw := max(int(math.Round(float64(w)*scale)), 1)
	nh := max(int(math.Round(float64(h)*scale)), 1)
	return nw, nh
}

// Fit returns a copy of img shrunk to fit within maxW×maxH, resampled with
// a Lanczos filter so sharp logo edges do not alias against the modules.
// Images that already fit are copied unchanged.
func Fit(img image.Image, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	nw, nh := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	if nw == b.Dx() && nh == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// ///////////////////////////////////////////////
// Overlay
// ///////////////////////////////////////////////

// Place computes the logo and plate rectangles for a logo of size lw×lh on
// a canvasW×canvasH canvas. Both are centered using integer division.
func Place(canvasW, canvasH, lw, lh int, opts Options) Placement {
	x0 := (canvasW - lw) / 2
	y0 := (canvasH - lh) / 2
	p := Placement{Logo: image.Rect(x0, y0, x0+lw, y0+lh)}
	if opts.Plate {
		pad := int(math.Round(float64(max(lw, lh)) * opts.Pad))
		pw, ph := lw+2*pad, lh+2*pad
		px := (canvasW - pw) / 2
		py := (canvasH - ph) / 2
		p.Plate = image.Rect(px, py, px+pw, py+ph)
	}
	return p
}

// Overlay resizes img into the logo box and composites it at the center of
// c, drawing the plate first when requested. The logo is blended with its
// own alpha channel. c is modified in place.
func Overlay(c *canvas.Canvas, img image.Image, opts Options) (Placement, error) {
	if err := ValidateScale(opts.Scale); err != nil {
		return Placement{}, err
	}
	if img == nil {
		return Placement{}, errors.New("overlay logo: nil image")
	}

	box := int(math.Round(float64(c.Width()) * opts.Scale))
	resized := Fit(img, box, box)
	rb := resized.Bounds()

	p := Place(c.Width(), c.Height(), rb.Dx(), rb.Dy(), opts)
	if opts.Plate {
		c.FillRect(p.Plate.Min.X, p.Plate.Min.Y, p.Plate.Dx(), p.Plate.Dy(), canvas.White)
	}
	c.Composite(resized, p.Logo.Min.X, p.Logo.Min.Y)
	return p, nil
}
