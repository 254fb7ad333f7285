// Package config provides configuration loading and defaults for qrbrand.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// file, a .env file and QRBRAND_* environment variables, and finally
// command-line flags (applied by the caller).
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"tools.zach/dev/qrbrand/internal/atomicfile"
	"tools.zach/dev/qrbrand/internal/canvas"
	"tools.zach/dev/qrbrand/internal/fonts"
	"tools.zach/dev/qrbrand/internal/logger"
	"tools.zach/dev/qrbrand/internal/migrate"
	"tools.zach/dev/qrbrand/internal/paths"
	"tools.zach/dev/qrbrand/internal/render"
	"tools.zach/dev/qrbrand/internal/symbol"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version used for migrations.
	Version int `toml:"version"`
	// QR holds symbol and raster settings.
	QR QRConfig `toml:"qr" envPrefix:"QR_"`
	// Logo holds logo overlay settings.
	Logo LogoConfig `toml:"logo" envPrefix:"LOGO_"`
	// Caption holds caption band settings.
	Caption CaptionConfig `toml:"caption" envPrefix:"CAPTION_"`
	// Font selects the caption font.
	Font FontConfig `toml:"font" envPrefix:"FONT_"`
	// Output holds output file settings.
	Output OutputConfig `toml:"output" envPrefix:"OUTPUT_"`
	// Log holds logging settings.
	Log LogConfig `toml:"log" envPrefix:"LOG_"`
}

// QRConfig holds symbol and raster settings.
type QRConfig struct {
	// URL is the content to encode. Usually given on the command line.
	URL string `toml:"url,omitempty" env:"URL"`
	// Size is the requested output side in pixels.
	Size int `toml:"size" env:"SIZE"`
	// QuietModules is the light border width in modules.
	QuietModules int `toml:"quiet_modules" env:"QUIET_MODULES"`
	// ErrorCorrection is the QR recovery level: low, medium, high, or highest.
	ErrorCorrection string `toml:"error_correction" env:"ERROR_CORRECTION"`
}

// LogoConfig holds logo overlay settings.
type LogoConfig struct {
	// Path is a local file or http(s) URL of the logo. Empty disables it.
	Path string `toml:"path,omitempty" env:"PATH"`
	// Scale is the logo box side as a fraction of the QR width.
	Scale float64 `toml:"scale" env:"SCALE"`
	// Plate draws a white plate behind the logo.
	Plate bool `toml:"plate" env:"PLATE"`
	// Pad is the plate padding as a fraction of the logo size.
	Pad float64 `toml:"pad" env:"PAD"`
}

// CaptionConfig holds caption band settings.
type CaptionConfig struct {
	// ShowURL captions the image with the encoded URL.
	ShowURL bool `toml:"show_url" env:"SHOW_URL"`
	// Text is a custom caption. Mutually exclusive with ShowURL.
	Text string `toml:"text,omitempty" env:"TEXT"`
	// Color is the caption color as #RRGGBB.
	Color string `toml:"color" env:"COLOR"`
}

// FontConfig selects the caption font. The first set field wins: File,
// then the first Search match, then Google, then the embedded font.
type FontConfig struct {
	// File is an explicit TTF, OTF, WOFF or WOFF2 path.
	File string `toml:"file,omitempty" env:"FILE"`
	// Search holds doublestar glob patterns tried in order.
	Search []string `toml:"search,omitempty" env:"SEARCH" envSeparator:","`
	// Google is a "google:Family:Weight" spec.
	Google string `toml:"google,omitempty" env:"GOOGLE"`
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	// Path is where the PNG is written.
	Path string `toml:"path" env:"PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fail).
	Level string `toml:"level" env:"LEVEL"`
	// File is an optional rotating log file. Empty logs to stderr only.
	File string `toml:"file,omitempty" env:"FILE"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb" env:"MAX_SIZE_MB"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	r := render.DefaultConfig()
	return &Config{
		Version: migrate.Config.CurrentVersion,
		QR: QRConfig{
			Size:            r.Size,
			QuietModules:    r.QuietModules,
			ErrorCorrection: "highest",
		},
		Logo: LogoConfig{
			Scale: r.LogoScale,
			Plate: r.LogoPlate,
			Pad:   r.LogoPad,
		},
		Caption: CaptionConfig{
			Color: "#000000",
		},
		Output: OutputConfig{
			Path: paths.DefaultOut,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ExampleConfig returns a Config suitable for generating config.default.toml.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file at path on top of
// DefaultConfig. If the file doesn't exist, returns DefaultConfig.
// Older schema versions are migrated and saved back after a .bak copy.
// The result is not validated; call [Config.Validate] after applying
// environment and flag overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)
	migrated := migrate.Config.NeedsMigration(version, false)
	if migrated {
		if backupErr := os.WriteFile(path+".bak", data, 0o644); backupErr != nil {
			slog.Warn("failed to write config backup", "error", backupErr)
		}
		data, _, err = migrate.Config.Run(data, version)
		if err != nil {
			return nil, fmt.Errorf("migrate config: %w", err)
		}
	}

	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String(), "path", path)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}
	return cfg, nil
}

// ApplyEnv overlays QRBRAND_* environment variables onto c. When envFile
// names an existing file it is loaded first; variables already set in the
// environment take precedence over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := env.ParseWithOptions(c, env.Options{Prefix: paths.EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Logo scale is only checked when a logo will be drawn.
	if err := c.Render().Validate(c.Logo.Path != ""); err != nil {
		return fmt.Errorf("invalid render settings: %w", err)
	}

	if _, err := symbol.ParseLevel(c.QR.ErrorCorrection); err != nil {
		return fmt.Errorf("invalid qr.error_correction: %w", err)
	}

	if c.Caption.ShowURL && c.Caption.Text != "" {
		return errors.New("caption.show_url and caption.text cannot be used together")
	}

	if _, err := canvas.ParseHexColor(c.Caption.Color); err != nil {
		return fmt.Errorf("invalid caption.color: %w", err)
	}

	if c.Font.Google != "" {
		if _, _, ok := fonts.ParseGoogleSpec(c.Font.Google); !ok {
			return fmt.Errorf("invalid font.google %q: expected google:FAMILY:WEIGHT", c.Font.Google)
		}
	}

	if c.Output.Path == "" {
		return errors.New("output.path must not be empty")
	}

	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, error, or fail", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	return nil
}

// ///////////////////////////////////////////////
// Accessors
// ///////////////////////////////////////////////

// Render returns the render geometry described by c.
func (c *Config) Render() render.Config {
	return render.Config{
		Size:         c.QR.Size,
		QuietModules: c.QR.QuietModules,
		LogoScale:    c.Logo.Scale,
		LogoPlate:    c.Logo.Plate,
		LogoPad:      c.Logo.Pad,
	}
}

// CaptionText returns the text to draw under the code, or "" for none.
func (c *Config) CaptionText() string {
	if c.Caption.ShowURL {
		return c.QR.URL
	}
	return c.Caption.Text
}

// Fonts returns the font resolution options, with Google downloads cached
// under cacheDir.
func (c *Config) Fonts(cacheDir string) fonts.Options {
	return fonts.Options{
		File:     c.Font.File,
		Search:   c.Font.Search,
		Google:   c.Font.Google,
		CacheDir: cacheDir,
	}
}
