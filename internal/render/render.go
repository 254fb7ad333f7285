// Package render runs the full image pipeline: rasterize the module grid,
// overlay the logo, then append the caption band.
//
// Each stage is optional except the first. Configuration is validated
// before any pixels are produced, so an invalid request never yields a
// partial image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"tools.zach/dev/qrbrand/internal/canvas"
	"tools.zach/dev/qrbrand/internal/caption"
	"tools.zach/dev/qrbrand/internal/logo"
	"tools.zach/dev/qrbrand/internal/modules"
	"tools.zach/dev/qrbrand/internal/symbol"
	"tools.zach/dev/qrbrand/internal/textlayout"
)

// Config holds the geometry parameters of a render.
type Config struct {
	// Size is the requested output width and height of the QR area in
	// pixels. The result may be slightly smaller to keep modules whole.
	Size int
	// QuietModules is the light border width in modules.
	QuietModules int
	// LogoScale is the logo box side as a fraction of the QR width.
	LogoScale float64
	// LogoPlate draws an opaque white plate behind the logo.
	LogoPlate bool
	// LogoPad is the plate padding as a fraction of the logo size.
	LogoPad float64
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Size:         1024,
		QuietModules: 4,
		LogoScale:    0.20,
		LogoPlate:    true,
		LogoPad:      0.18,
	}
}

// Validate checks the configuration. The logo scale is only checked when
// withLogo is set, since it has no effect otherwise.
func (c Config) Validate(withLogo bool) error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", modules.ErrSizeTooSmall, c.Size)
	}
	if c.QuietModules < 0 {
		return fmt.Errorf("quiet_modules must be non-negative, got %d", c.QuietModules)
	}
	if math.IsNaN(c.LogoPad) || c.LogoPad < 0 {
		return fmt.Errorf("logo pad must be non-negative, got %g", c.LogoPad)
	}
	if withLogo {
		if err := logo.ValidateScale(c.LogoScale); err != nil {
			return err
		}
	}
	return nil
}

// Options describes one render.
type Options struct {
	Config

	// Logo is composited at the center when non-nil.
	Logo image.Image
	// Caption is drawn in a band under the code when non-empty.
	Caption string
	// CaptionColor is the caption text color.
	CaptionColor color.RGBA
	// Glyphs supplies the caption font. Required when Caption is set.
	Glyphs textlayout.GlyphSource
	// Logger receives per-stage debug logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Render produces the final image for grid.
func Render(grid symbol.Grid, opts Options) (*canvas.Canvas, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := opts.Validate(opts.Logo != nil); err != nil {
		return nil, err
	}
	if opts.Caption != "" && opts.Glyphs == nil {
		return nil, fmt.Errorf("caption %q: %w", opts.Caption, textlayout.ErrNoGlyphSource)
	}

	img, err := modules.Rasterize(grid, opts.Size, opts.QuietModules)
	if err != nil {
		return nil, err
	}
	log.Debug("rasterized modules",
		"modules", grid.Size(),
		"quiet", opts.QuietModules,
		"requested", opts.Size,
		"side", img.Width())

	if opts.Logo != nil {
		p, err := logo.Overlay(img, opts.Logo, logo.Options{
			Scale: opts.LogoScale,
			Plate: opts.LogoPlate,
			Pad:   opts.LogoPad,
		})
		if err != nil {
			return nil, fmt.Errorf("overlay logo: %w", err)
		}
		log.Debug("overlaid logo", "logo", p.Logo.String(), "plate", p.Plate.String())
	}

	if opts.Caption != "" {
		qrHeight := img.Height()
		img, err = caption.Append(img, opts.Glyphs, opts.Caption, opts.CaptionColor)
		if err != nil {
			return nil, err
		}
		log.Debug("appended caption",
			"text", opts.Caption,
			"band", caption.BandHeight(qrHeight),
			"height", img.Height())
	}

	return img, nil
}
