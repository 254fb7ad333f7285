// Package canvas provides the mutable RGBA pixel buffer shared by every
// rendering stage.
//
// A [Canvas] owns its pixel storage. Writes outside the buffer are dropped
// rather than wrapped or rejected with an error, so callers can draw shapes
// and glyphs that partially leave the image without clipping them first.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
)

// Common opaque colors.
var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// ///////////////////////////////////////////////
// Canvas
// ///////////////////////////////////////////////

// Canvas is an owned RGBA pixel buffer. Pixels are stored in a flat slice
// indexed by y*stride + 4*x, one byte per channel.
type Canvas struct {
	// img holds the pixel storage. Its bounds always start at (0,0).
	img *image.RGBA
}

// New allocates a w×h canvas filled with fill. Negative dimensions are
// treated as zero.
func New(w, h int, fill color.RGBA) *Canvas {
	w, h = max(w, 0), max(h, 0)
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	c.Fill(fill)
	return c
}

// FromImage copies src into a new canvas whose origin is (0,0).
func FromImage(src image.Image) *Canvas {
	b := src.Bounds()
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))}
	draw.Draw(c.img, c.img.Bounds(), src, b.Min, draw.Src)
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Bounds returns the canvas rectangle, always anchored at (0,0).
func (c *Canvas) Bounds() image.Rectangle { return c.img.Rect }

// Image exposes the backing image for encoding. The returned value aliases
// the canvas storage.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clone returns a deep copy of c.
func (c *Canvas) Clone() *Canvas {
	return FromImage(c.img)
}

// In reports whether (x, y) addresses a pixel inside the canvas.
func (c *Canvas) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width() && y < c.Height()
}

// Pixel returns the pixel at (x, y). ok is false when the coordinate lies
// outside the canvas.
func (c *Canvas) Pixel(x, y int) (px color.RGBA, ok bool) {
	if !c.In(x, y) {
		return color.RGBA{}, false
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}, true
}

// Set writes col at (x, y). Out-of-range coordinates are skipped and Set
// reports false.
func (c *Canvas) Set(x, y int, col color.RGBA) bool {
	if !c.In(x, y) {
		return false
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = col.R, col.G, col.B, col.A
	return true
}

// Blend composites the opaque color src over the pixel at (x, y) with
// coverage alpha, leaving the destination fully opaque. See [BlendOver].
func (c *Canvas) Blend(x, y int, src color.RGBA, alpha uint8) bool {
	dst, ok := c.Pixel(x, y)
	if !ok {
		return false
	}
	return c.Set(x, y, BlendOver(dst, src, alpha))
}

// Fill paints every pixel with col.
func (c *Canvas) Fill(col color.RGBA) {
	draw.Draw(c.img, c.img.Rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// FillRect paints the w×h rectangle at (x, y) with col, replacing existing
// pixels. The part of the rectangle outside the canvas is discarded.
func (c *Canvas) FillRect(x, y, w, h int, col color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// Composite draws src with its top-left corner at (x, y) using source-over
// compositing, so each destination pixel is weighted by the source alpha.
func (c *Canvas) Composite(src image.Image, x, y int) {
	sb := src.Bounds()
	r := image.Rect(x, y, x+sb.Dx(), y+sb.Dy())
	draw.Draw(c.img, r, src, sb.Min, draw.Over)
}

// CopyFrom replaces the pixels under src, placed at (x, y), with an exact
// copy of src. Nothing is scaled.
func (c *Canvas) CopyFrom(src *Canvas, x, y int) {
	r := image.Rect(x, y, x+src.Width(), y+src.Height())
	draw.Draw(c.img, r, src.img, image.Point{}, draw.Src)
}

// ///////////////////////////////////////////////
// Blending
// ///////////////////////////////////////////////

// BlendOver blends the color src over dst with coverage a (0..255),
// treating src as opaque. The result is always fully opaque:
//
//	out = (src*a + dst*(255-a)) / 255
func BlendOver(dst, src color.RGBA, a uint8) color.RGBA {
	alpha := uint16(a)
	inv := 255 - alpha
	mix := func(s, d uint8) uint8 {
		return uint8((uint16(s)*alpha + uint16(d)*inv) / 255)
	}
	return color.RGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: 255,
	}
}
