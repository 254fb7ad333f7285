package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rootpkg "tools.zach/dev/qrbrand"
	"tools.zach/dev/qrbrand/internal/config"
)

// ///////////////////////////////////////////////
// resolveVersion Tests
// ///////////////////////////////////////////////

func TestResolveVersionWithLdflags(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	got := resolveVersion()
	if got != "1.2.3" {
		t.Errorf("resolveVersion() = %q, want %q", got, "1.2.3")
	}
}

func TestResolveVersionDev(t *testing.T) {
	// In test binaries, ReadBuildInfo may or may not return VCS info.
	original := version
	defer func() { version = original }()

	version = "dev"
	got := resolveVersion()
	if !strings.HasPrefix(got, "dev") {
		t.Errorf("resolveVersion() = %q, expected to start with 'dev'", got)
	}
}

// ///////////////////////////////////////////////
// parseFlags Tests
// ///////////////////////////////////////////////

func TestParseFlagsAliases(t *testing.T) {
	o, err := parseFlags([]string{"-u", "https://example.com", "-o", "x.png", "-a", "hi", "-i", "logo.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	for _, name := range []string{"url", "out", "alt-text", "image"} {
		if !o.set[name] {
			t.Errorf("set[%q] = false, want true", name)
		}
	}
	if o.set["size"] {
		t.Error("size reported as set without the flag")
	}
	if o.url != "https://example.com" || o.out != "x.png" || o.altText != "hi" || o.image != "logo.png" {
		t.Errorf("unexpected values: %+v", o)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"show-url with alt-text", []string{"-u", "https://x.io", "-s", "-a", "hi"}, errConflict},
		{"unknown flag", []string{"-bogus"}, errUsage},
		{"bad int", []string{"-size", "big"}, errUsage},
		{"help", []string{"-h"}, flag.ErrHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, io.Discard)
			if !errors.Is(err, tt.target) {
				t.Errorf("parseFlags(%v) error = %v, want %v", tt.args, err, tt.target)
			}
		})
	}
}

func TestParseFlagsPositionalArgs(t *testing.T) {
	_, err := parseFlags([]string{"-u", "https://x.io", "extra"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unexpected arguments") {
		t.Errorf("error = %v, want unexpected arguments", err)
	}
}

// ///////////////////////////////////////////////
// apply Tests
// ///////////////////////////////////////////////

func TestApplyOnlyExplicitFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.QR.Size = 512
	cfg.Logo.Scale = 0.3

	o, err := parseFlags([]string{"-quiet", "2", "-logo-plate=false"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	o.apply(cfg)

	if cfg.QR.Size != 512 {
		t.Errorf("Size = %d, want 512 from config", cfg.QR.Size)
	}
	if cfg.Logo.Scale != 0.3 {
		t.Errorf("Scale = %g, want 0.3 from config", cfg.Logo.Scale)
	}
	if cfg.QR.QuietModules != 2 {
		t.Errorf("QuietModules = %d, want 2", cfg.QR.QuietModules)
	}
	if cfg.Logo.Plate {
		t.Error("Plate = true, want false")
	}
}

func TestApplyCaptionFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		showURL     bool
		text        string
		wantShowURL bool
		wantText    string
	}{
		{"show-url replaces config text", []string{"-s"}, false, "from config", true, ""},
		{"alt-text replaces config show_url", []string{"-a", "hello"}, true, "", false, "hello"},
		{"no caption flags keep config", nil, false, "from config", false, "from config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Caption.ShowURL = tt.showURL
			cfg.Caption.Text = tt.text

			o, err := parseFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseFlags: %v", err)
			}
			o.apply(cfg)
			if cfg.Caption.ShowURL != tt.wantShowURL || cfg.Caption.Text != tt.wantText {
				t.Errorf("Caption = %+v, want show_url=%v text=%q", cfg.Caption, tt.wantShowURL, tt.wantText)
			}
		})
	}
}

func TestApplyFontFlag(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Font = config.FontConfig{File: "old.ttf", Search: []string{"*.ttf"}}

	o, _ := parseFlags([]string{"-font", "google:Inter:600"}, io.Discard)
	o.apply(cfg)
	if cfg.Font.Google != "google:Inter:600" || cfg.Font.File != "" || cfg.Font.Search != nil {
		t.Errorf("Font = %+v, want google only", cfg.Font)
	}

	o, _ = parseFlags([]string{"-font", "/fonts/Inter.ttf"}, io.Discard)
	o.apply(cfg)
	if cfg.Font.File != "/fonts/Inter.ttf" || cfg.Font.Google != "" {
		t.Errorf("Font = %+v, want file only", cfg.Font)
	}
}

// ///////////////////////////////////////////////
// validateURL Tests
// ///////////////////////////////////////////////

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{"https://example.com", "https://example.com/", ""},
		{"  HTTPS://Example.COM  ", "https://example.com/", ""},
		{"https://example.com/page?q=1#top", "https://example.com/page?q=1#top", ""},
		{"http://localhost:8080/path?q=1", "http://localhost:8080/path?q=1", ""},
		{"http://localhost:8080", "http://localhost:8080/", ""},
		{"mailto:someone@example.com", "mailto:someone@example.com", ""},
		{"not-a-valid-url", "", "Invalid URL: not-a-valid-url (did you include https:// ?)"},
		{"example.com/page", "", "did you include https://"},
		{"", "", "missing URL"},
	}
	for _, tt := range tests {
		got, err := validateURL(tt.in)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("validateURL(%q) = %v, want nil", tt.in, err)
			} else if got != tt.want {
				t.Errorf("validateURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("validateURL(%q) = %v, want error containing %q", tt.in, err, tt.wantErr)
		}
	}
}

// ///////////////////////////////////////////////
// loadConfig Tests
// ///////////////////////////////////////////////

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	toml := `
version = 2

[qr]
url = "https://from-config.example"
size = 512
quiet_modules = 3

[caption]
text = "config caption"
`
	if err := os.WriteFile(cfgPath, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QRBRAND_QR_QUIET_MODULES", "2")
	t.Setenv("QRBRAND_QR_SIZE", "700")

	o, err := parseFlags([]string{"-config", cfgPath, "-size", "600"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.QR.Size != 600 {
		t.Errorf("Size = %d, want 600 from flag", cfg.QR.Size)
	}
	if cfg.QR.QuietModules != 2 {
		t.Errorf("QuietModules = %d, want 2 from env", cfg.QR.QuietModules)
	}
	if cfg.QR.URL != "https://from-config.example/" {
		t.Errorf("URL = %q, want normalized config value", cfg.QR.URL)
	}
	if cfg.CaptionText() != "config caption" {
		t.Errorf("CaptionText() = %q", cfg.CaptionText())
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no url", []string{"-config", missing}, "missing URL"},
		{"bad url", []string{"-config", missing, "-u", "nope"}, "Invalid URL"},
		{"bad ec", []string{"-config", missing, "-u", "https://x.io", "-ec", "max"}, "error_correction"},
		{"bad scale with logo", []string{"-config", missing, "-u", "https://x.io", "-i", "l.png", "-logo-scale", "0.5"}, "logo scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseFlags: %v", err)
			}
			_, err = loadConfig(o)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// run Tests
// ///////////////////////////////////////////////

// runCmd runs the command with a throwaway config path and returns the exit
// code and stderr.
func runCmd(t *testing.T, args ...string) (int, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	args = append([]string{"-config", filepath.Join(t.TempDir(), "config.toml")}, args...)
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String() + stderr.String()
}

// decodePNG reads the PNG at path.
func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func TestRunWritesSquarePNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "qr.png")
	code, output := runCmd(t, "-u", "https://example.com", "-o", out, "-size", "300")
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, output)
	}
	if !strings.Contains(output, "Wrote "+out) {
		t.Errorf("output missing confirmation:\n%s", output)
	}

	img := decodePNG(t, out)
	b := img.Bounds()
	if b.Dx() != b.Dy() || b.Dx() > 300 {
		t.Errorf("bounds = %v, want square no larger than 300", b)
	}
	r, g, bl, _ := img.At(0, 0).RGBA()
	if r != 0xffff || g != 0xffff || bl != 0xffff {
		t.Error("quiet zone corner is not white")
	}
}

func TestRunWithCaptionAndLogo(t *testing.T) {
	dir := t.TempDir()
	logoPath := filepath.Join(dir, "logo.png")
	logo := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			logo.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, logo); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(logoPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "qr.png")
	code, output := runCmd(t, "-u", "https://example.com", "-o", out, "-size", "400", "-i", logoPath, "-s")
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, output)
	}

	img := decodePNG(t, out)
	b := img.Bounds()
	if b.Dy() <= b.Dx() {
		t.Errorf("bounds = %v, want a caption band below the code", b)
	}
	r, g, bl, _ := img.At(b.Dx()/2, b.Dx()/2).RGBA()
	if r != 0xffff || g != 0 || bl != 0 {
		t.Errorf("center pixel = %v, want the red logo", img.At(b.Dx()/2, b.Dx()/2))
	}
}

func TestRunInvalidURL(t *testing.T) {
	out := filepath.Join(t.TempDir(), "qr.png")
	code, output := runCmd(t, "-u", "not-a-valid-url", "-o", out)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(output, "Invalid URL") {
		t.Errorf("output missing URL error:\n%s", output)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written despite invalid URL")
	}
}

func TestRunConflictingCaptionFlags(t *testing.T) {
	code, output := runCmd(t, "-u", "https://example.com", "-s", "-a", "hi")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(output, "cannot be used together") {
		t.Errorf("output missing conflict error:\n%s", output)
	}
}

func TestRunMissingLogoFails(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "qr.png")
	code, output := runCmd(t, "-u", "https://example.com", "-o", out, "-i", filepath.Join(dir, "missing.png"))
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(output, "load logo") {
		t.Errorf("output missing logo error:\n%s", output)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written despite logo failure")
	}
}

func TestRunWatchWithoutInputs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "qr.png")
	code, output := runCmd(t, "-u", "https://example.com", "-o", out, "-watch", "-config", "")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(output, errNothingToWatch.Error()) {
		t.Errorf("output missing watch error:\n%s", output)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written before rejecting -watch")
	}
}

func TestRunVersion(t *testing.T) {
	original := version
	defer func() { version = original }()
	version = "1.2.3"

	code, output := runCmd(t, "-version")
	if code != 0 || !strings.Contains(output, "qrbrand 1.2.3") {
		t.Errorf("code = %d, output = %q", code, output)
	}
}

func TestRunWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	code, output := runCmd(t, "-write-config", path)
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, output)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	if !bytes.Equal(data, rootpkg.DefaultConfigTOML) {
		t.Error("written config differs from the embedded default")
	}

	code, output = runCmd(t, "-write-config", path)
	if code != 1 || !strings.Contains(output, "already exists") {
		t.Errorf("second write: code = %d, output = %q", code, output)
	}
}

func TestEmbeddedDefaultConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, rootpkg.DefaultConfigTOML, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); !errors.Is(err, os.ErrNotExist) {
		t.Error("embedded default config needed a migration")
	}
}

// ///////////////////////////////////////////////
// watchedFiles Tests
// ///////////////////////////////////////////////

func TestWatchedFiles(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logo.Path = "https://example.com/logo.png"
	cfg.Font.File = "/fonts/Inter.ttf"

	got := watchedFiles("/etc/qrbrand.toml", cfg)
	want := []string{"/etc/qrbrand.toml", "/fonts/Inter.ttf"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("watchedFiles() = %v, want %v", got, want)
	}

	cfg.Logo.Path = "logo.svg"
	got = watchedFiles("", cfg)
	if len(got) != 2 || got[0] != "logo.svg" {
		t.Errorf("watchedFiles() = %v, want local logo first", got)
	}
}
