// Package modules rasterizes QR module grids into pixel canvases.
//
// Every module becomes a square block of whole pixels. When the requested
// size is not an exact multiple of the module count the output shrinks to
// the largest multiple that fits, so module edges stay sharp.
package modules

import (
	"errors"
	"fmt"

	"tools.zach/dev/qrbrand/internal/canvas"
	"tools.zach/dev/qrbrand/internal/symbol"
)

// MinPixelsPerModule is the smallest module block that still scans reliably.
const MinPixelsPerModule = 2

var (
	// ErrEmptyGrid is returned for a nil or zero-sized module grid.
	ErrEmptyGrid = errors.New("empty module grid")
	// ErrSizeTooSmall is returned when size cannot give every module
	// MinPixelsPerModule pixels.
	ErrSizeTooSmall = errors.New("size too small")
)

// Layout describes how a grid maps onto pixels.
type Layout struct {
	// Modules is the grid side length without the quiet zone.
	Modules int
	// TotalModules is Modules plus the quiet zone on both sides.
	TotalModules int
	// PixelsPerModule is the side of one module block in pixels.
	PixelsPerModule int
	// Side is the output width and height in pixels.
	Side int
}

// Plan computes the pixel layout for an n-module grid with quiet modules of
// border on each side, targeting a size×size canvas.
func Plan(n, size, quiet int) (Layout, error) {
	if n <= 0 {
		return Layout{}, fmt.Errorf("%w: module count %d", ErrEmptyGrid, n)
	}
	quiet = max(quiet, 0)
	total := n + 2*quiet
	ppm := max(size, 0) / total
	if ppm < MinPixelsPerModule {
		return Layout{}, fmt.Errorf("%w: requested size %d for %d total modules gives %d pixels per module, need at least %d (increase size)",
			ErrSizeTooSmall, size, total, ppm, MinPixelsPerModule)
	}
	return Layout{
		Modules:         n,
		TotalModules:    total,
		PixelsPerModule: ppm,
		Side:            ppm * total,
	}, nil
}

// Rasterize renders grid onto a new white canvas, drawing each dark module
// as an opaque black block offset by the quiet zone. The canvas side is
// PixelsPerModule*TotalModules and never exceeds size.
func Rasterize(grid symbol.Grid, size, quiet int) (*canvas.Canvas, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrEmptyGrid)
	}
	l, err := Plan(grid.Size(), size, quiet)
	if err != nil {
		return nil, err
	}
	quiet = max(quiet, 0)

	c := canvas.New(l.Side, l.Side, canvas.White)
	ppm := l.PixelsPerModule
	for y := range l.Modules {
		for x := range l.Modules {
			if !grid.Dark(x, y) {
				continue
			}
			c.FillRect((x+quiet)*ppm, (y+quiet)*ppm, ppm, ppm, canvas.Black)
		}
	}
	return c, nil
}
