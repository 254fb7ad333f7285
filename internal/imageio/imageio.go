// Package imageio loads logo images and writes finished PNGs.
//
// Logos may be local files or http(s) URLs. Raster formats are decoded
// through the image package registry (PNG, JPEG, GIF, WebP, BMP, TIFF) with
// EXIF orientation applied; SVG documents are rasterized. Output is always
// PNG, written atomically.
package imageio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"tools.zach/dev/qrbrand/internal/atomicfile"
	"tools.zach/dev/qrbrand/internal/remote"
)

var (
	// ErrDecode is returned when a logo cannot be read or decoded.
	ErrDecode = errors.New("image decode failed")
	// ErrWrite is returned when the output image cannot be encoded or
	// written.
	ErrWrite = errors.New("image write failed")
)

// ///////////////////////////////////////////////
// Loading
// ///////////////////////////////////////////////

// Load reads the image at pathOrURL. URLs are downloaded with retries and
// honor ctx.
func Load(ctx context.Context, pathOrURL string) (image.Image, error) {
	data, err := read(ctx, pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return Decode(pathOrURL, data)
}

func read(ctx context.Context, pathOrURL string) ([]byte, error) {
	if remote.IsURL(pathOrURL) {
		return remote.Get(ctx, pathOrURL, "", remote.MaxLogoBytes)
	}
	return os.ReadFile(pathOrURL)
}

// Decode decodes data as SVG or any registered raster format. name is used
// for SVG detection by extension and in error messages.
func Decode(name string, data []byte) (image.Image, error) {
	if IsSVG(name, data) {
		img, err := RasterizeSVG(bytes.NewReader(data), SVGRasterSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
		}
		return img, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}
	return img, nil
}

// ///////////////////////////////////////////////
// Writing
// ///////////////////////////////////////////////

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// WritePNG encodes img as PNG and atomically replaces path with it. On
// failure path is left as it was.
func WritePNG(path string, img image.Image) error {
	err := atomicfile.WriteFunc(path, 0o644, func(w io.Writer) error {
		return EncodePNG(w, img)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}
