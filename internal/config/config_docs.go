package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "logo.scale") to
// their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── QR ───────────────────────────────────────────────────────
	"qr": {
		Comment: "QR symbol and raster settings.\nEvery value here can also be set with QRBRAND_QR_* environment variables.",
	},
	"qr.url": {
		Comment: "Content to encode. Usually passed with -url instead.",
		Alternatives: []string{
			`url = "https://example.com"`,
		},
	},
	"qr.size": {
		Comment: "Requested output width in pixels. The result may be slightly smaller\nso every module is a whole number of pixels.",
	},
	"qr.quiet_modules": {
		Comment: "Light border around the code, in modules. 4 is the usual minimum.",
	},
	"qr.error_correction": {
		Comment: "Error correction level. Options: \"low\", \"medium\", \"high\", \"highest\"\nKeep \"highest\" when overlaying a logo: the logo hides modules.",
		Alternatives: []string{
			`error_correction = "high"`,
		},
	},

	// ── Logo ─────────────────────────────────────────────────────
	"logo": {
		Comment: "Logo drawn in the middle of the code.",
	},
	"logo.path": {
		Comment: "Local file or http(s) URL. PNG, JPEG, GIF, WebP, BMP, TIFF and SVG are supported.",
		Alternatives: []string{
			`path = "logo.png"`,
			`path = "https://example.com/logo.svg"`,
		},
	},
	"logo.scale": {
		Comment: "Logo size as a fraction of the QR width. Must be between 0.05 and 0.35.",
	},
	"logo.plate": {
		Comment: "Draw a white plate behind the logo so modules don't show through.",
	},
	"logo.pad": {
		Comment: "Plate padding as a fraction of the logo size.",
	},

	// ── Caption ──────────────────────────────────────────────────
	"caption": {
		Comment: "Text band under the code. show_url and text are mutually exclusive.",
	},
	"caption.show_url": {
		Comment: "Print the encoded URL under the code.",
	},
	"caption.text": {
		Comment: "Custom caption text.",
		Alternatives: []string{
			`text = "Scan me"`,
		},
	},
	"caption.color": {
		Comment: "Caption color as #RRGGBB.",
	},

	// ── Font ─────────────────────────────────────────────────────
	"font": {
		Comment: "Caption font. The first configured source wins:\nfile, then the first search match, then google. With none set the\nbuilt-in Go Regular font is used.",
	},
	"font.file": {
		Comment: "TTF, OTF, WOFF or WOFF2 file.",
		Alternatives: []string{
			`file = "~/Library/Fonts/Inter-Regular.ttf"`,
		},
	},
	"font.search": {
		Comment: "Glob patterns (** matches any depth) searched in order.",
		Alternatives: []string{
			`search = ["~/.local/share/fonts/**/Inter*.ttf", "/usr/share/fonts/**/DejaVuSans.ttf"]`,
		},
	},
	"font.google": {
		Comment: "Google Fonts family and weight, downloaded once and cached.",
		Alternatives: []string{
			`google = "google:Inter:600"`,
		},
	},

	// ── Output ───────────────────────────────────────────────────
	"output": {
		Comment: "Output settings.",
	},
	"output.path": {
		Comment: "PNG file to write. Replaced atomically.",
	},

	// ── Log ──────────────────────────────────────────────────────
	"log": {
		Comment: "Logging configuration",
	},
	"log.level": {
		Comment: "Minimum log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\", \"fail\"",
		Alternatives: []string{
			`level = "debug"`,
			`level = "warn"`,
		},
	},
	"log.file": {
		Comment: "Also write logs to this rotating file.",
		Alternatives: []string{
			`file = "~/.qrbrand/qrbrand.log"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},
}
