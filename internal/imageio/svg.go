package imageio

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// SVGRasterSize is the longer side, in pixels, that SVG logos are
// rasterized to before being fitted into the logo box.
const SVGRasterSize = 1024

// IsSVG reports whether name has an .svg extension or data starts with an
// XML or <svg> prologue.
func IsSVG(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return true
	}
	head := bytes.TrimPrefix(data[:min(len(data), 512)], []byte("\xef\xbb\xbf"))
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	return bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg"))
}

// RasterizeSVG renders an SVG document so that its longer side is size
// pixels, preserving the viewBox aspect ratio. Areas the drawing does not
// cover stay transparent.
func RasterizeSVG(r io.Reader, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has empty viewBox %gx%g", w, h)
	}

	scale := float64(size) / math.Max(w, h)
	pw := max(int(math.Round(w*scale)), 1)
	ph := max(int(math.Round(h*scale)), 1)

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	icon.SetTarget(0, 0, float64(pw), float64(ph))
	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	dasher := rasterx.NewDasher(pw, ph, scanner)
	icon.Draw(dasher, 1.0)
	return img, nil
}
