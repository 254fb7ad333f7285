package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"

	"tools.zach/dev/qrbrand/internal/config"
	"tools.zach/dev/qrbrand/internal/paths"
)

// ///////////////////////////////////////////////
// Command-Line Options
// ///////////////////////////////////////////////

// cliOptions holds parsed flag values. Only flags named in set override the
// loaded configuration.
type cliOptions struct {
	url          string
	image        string
	out          string
	size         int
	quiet        int
	logoScale    float64
	logoPlate    bool
	logoPad      float64
	showURL      bool
	altText      string
	captionColor string
	ec           string
	font         string
	configPath   string
	logLevel     string
	logFile      string
	watch        bool
	version      bool
	writeConfig  string

	// set holds the canonical names of flags given on the command line.
	set map[string]bool
}

// aliases maps short flag names to their long form.
var aliases = map[string]string{
	"u": "url",
	"i": "image",
	"o": "out",
	"s": "show-url",
	"a": "alt-text",
}

// errUsage wraps flag parse errors, which the flag set has already reported.
var errUsage = errors.New("usage")

// errConflict is returned when -show-url and -alt-text are both given.
var errConflict = errors.New("--show-url and --alt-text cannot be used together")

// errNothingToWatch is returned when -watch has no local input to follow.
var errNothingToWatch = errors.New("-watch needs a config file, local logo, or font file to watch")

// parseFlags parses args into cliOptions. Usage and parse errors go to
// stderr.
func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	def := config.DefaultConfig()
	o := &cliOptions{set: map[string]bool{}}

	fs := flag.NewFlagSet(paths.BinaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s -url URL [flags]\n\n", paths.BinaryName)
		fmt.Fprintln(stderr, "Generate a scannable QR code PNG from a URL, optionally with a centered logo.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	stringVar(fs, &o.url, "url", "u", "", "URL to encode (e.g. https://example.com)")
	stringVar(fs, &o.image, "image", "i", "", "optional center logo: file path or http(s) URL (png, jpg, gif, webp, bmp, tiff, svg)")
	stringVar(fs, &o.out, "out", "o", def.Output.Path, "output PNG path")
	fs.IntVar(&o.size, "size", def.QR.Size, "size in pixels of the QR portion (square)")
	fs.IntVar(&o.quiet, "quiet", def.QR.QuietModules, "quiet zone size in modules; 4 is the usual minimum")
	fs.Float64Var(&o.logoScale, "logo-scale", def.Logo.Scale, "logo size as a fraction of QR width (0.05..0.35)")
	fs.BoolVar(&o.logoPlate, "logo-plate", def.Logo.Plate, "draw a white plate behind the logo")
	fs.Float64Var(&o.logoPad, "logo-pad", def.Logo.Pad, "plate padding as a fraction of logo size")
	boolVar(fs, &o.showURL, "show-url", "s", false, "render the URL as text below the QR code")
	stringVar(fs, &o.altText, "alt-text", "a", "", "render this text below the QR code instead of the URL")
	fs.StringVar(&o.captionColor, "caption-color", def.Caption.Color, "caption color as #RRGGBB")
	fs.StringVar(&o.ec, "ec", def.QR.ErrorCorrection, "error correction: low, medium, high, highest")
	fs.StringVar(&o.font, "font", "", "caption font file, or google:FAMILY:WEIGHT")
	fs.StringVar(&o.configPath, "config", paths.Default().Config(), "config file path")
	fs.StringVar(&o.logLevel, "log-level", def.Log.Level, "log level: trace, debug, info, warn, error, fail")
	fs.StringVar(&o.logFile, "log-file", "", "also write logs to this rotating file")
	fs.BoolVar(&o.watch, "watch", false, "re-render when the config, logo, or font file changes")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	fs.StringVar(&o.writeConfig, "write-config", "", "write the default config to `PATH` and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		o.set[name] = true
	})

	if o.set["show-url"] && o.set["alt-text"] && o.showURL {
		return nil, errConflict
	}
	return o, nil
}

// stringVar registers a string flag under both its long and short names.
func stringVar(fs *flag.FlagSet, p *string, long, short, value, usage string) {
	fs.StringVar(p, long, value, usage)
	fs.StringVar(p, short, value, "shorthand for -"+long)
}

// boolVar registers a bool flag under both its long and short names.
func boolVar(fs *flag.FlagSet, p *bool, long, short string, value bool, usage string) {
	fs.BoolVar(p, long, value, usage)
	fs.BoolVar(p, short, value, "shorthand for -"+long)
}

// ///////////////////////////////////////////////
// Applying Flags
// ///////////////////////////////////////////////

// apply overlays explicitly set flags onto cfg.
func (o *cliOptions) apply(cfg *config.Config) {
	if o.set["url"] {
		cfg.QR.URL = strings.TrimSpace(o.url)
	}
	if o.set["image"] {
		cfg.Logo.Path = o.image
	}
	if o.set["out"] {
		cfg.Output.Path = o.out
	}
	if o.set["size"] {
		cfg.QR.Size = o.size
	}
	if o.set["quiet"] {
		cfg.QR.QuietModules = o.quiet
	}
	if o.set["logo-scale"] {
		cfg.Logo.Scale = o.logoScale
	}
	if o.set["logo-plate"] {
		cfg.Logo.Plate = o.logoPlate
	}
	if o.set["logo-pad"] {
		cfg.Logo.Pad = o.logoPad
	}
	if o.set["caption-color"] {
		cfg.Caption.Color = o.captionColor
	}
	if o.set["ec"] {
		cfg.QR.ErrorCorrection = o.ec
	}
	if o.set["log-level"] {
		cfg.Log.Level = o.logLevel
	}
	if o.set["log-file"] {
		cfg.Log.File = o.logFile
	}

	// A caption flag replaces whichever caption the config asked for.
	if o.set["show-url"] {
		cfg.Caption.ShowURL = o.showURL
		if o.showURL {
			cfg.Caption.Text = ""
		}
	}
	if o.set["alt-text"] {
		cfg.Caption.Text = o.altText
		if o.altText != "" {
			cfg.Caption.ShowURL = false
		}
	}

	if o.set["font"] {
		if strings.HasPrefix(o.font, "google:") {
			cfg.Font = config.FontConfig{Google: o.font}
		} else {
			cfg.Font = config.FontConfig{File: o.font}
		}
	}
}

// hierarchicalSchemes get a "/" path when none is given.
var hierarchicalSchemes = map[string]bool{
	"http": true, "https": true, "ws": true, "wss": true, "ftp": true,
}

// validateURL checks that raw is an absolute URL and returns its normalized
// form: lowercase scheme and host, and a "/" path for web URLs without one.
func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("missing URL: pass -url or set qr.url in the config file")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return "", fmt.Errorf("Invalid URL: %s (did you include https:// ?)", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Opaque == "" && u.Path == "" && hierarchicalSchemes[u.Scheme] {
		u.Path = "/"
	}
	return u.String(), nil
}
