// Package main implements the qrbrand command, which renders a QR code PNG
// from a URL with an optional centered logo and caption band.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"slices"

	rootpkg "tools.zach/dev/qrbrand"
	"tools.zach/dev/qrbrand/internal/atomicfile"
	"tools.zach/dev/qrbrand/internal/canvas"
	"tools.zach/dev/qrbrand/internal/config"
	"tools.zach/dev/qrbrand/internal/fonts"
	"tools.zach/dev/qrbrand/internal/imageio"
	"tools.zach/dev/qrbrand/internal/logger"
	"tools.zach/dev/qrbrand/internal/paths"
	"tools.zach/dev/qrbrand/internal/remote"
	"tools.zach/dev/qrbrand/internal/render"
	"tools.zach/dev/qrbrand/internal/symbol"
	"tools.zach/dev/qrbrand/internal/watch"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//   - goreleaser: -X main.version={{.Version}}  -> "0.1.0"
//   - make build: -X main.version=$(VERSION)    -> "0.0.0-dev+05ffee5"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags at build time it is returned as-is; otherwise VCS revision and dirty
// state embedded by the Go toolchain are used to construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			// the flag set already printed the error and usage
		default:
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}

	if opts.version {
		fmt.Fprintf(stdout, "%s %s\n", paths.BinaryName, resolveVersion())
		return 0
	}
	if opts.writeConfig != "" {
		if err := writeDefaultConfig(opts.writeConfig); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Wrote %s\n", opts.writeConfig)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if opts.watch && len(watchedFiles(opts.configPath, cfg)) == 0 {
		fmt.Fprintf(stderr, "error: %v\n", errNothingToWatch)
		return 1
	}

	log, logCloser, err := logger.New(stderr, logger.Options{
		Level:     logger.ParseLevel(cfg.Log.Level),
		File:      paths.ExpandHome(cfg.Log.File),
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if err != nil {
		fmt.Fprintf(stderr, "fatal: init logger: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(log)
	slog.Debug("qrbrand starting", "version", resolveVersion(), "config", opts.configPath)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	if err := generate(ctx, cfg, stderr); err != nil {
		logger.Fail(log, "render failed", "error", err)
		return 1
	}
	if !opts.watch {
		return 0
	}

	if err := watchLoop(ctx, opts, cfg, stderr); err != nil {
		logger.Fail(log, "watch failed", "error", err)
		return 1
	}
	return 0
}

// ///////////////////////////////////////////////
// Configuration
// ///////////////////////////////////////////////

// loadConfig merges defaults, the TOML config file, .env and QRBRAND_*
// environment variables, and explicit flags, in increasing precedence, and
// validates the result.
func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(paths.EnvFile); err != nil {
		return nil, err
	}
	opts.apply(cfg)

	normalized, err := validateURL(cfg.QR.URL)
	if err != nil {
		return nil, err
	}
	cfg.QR.URL = normalized
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeDefaultConfig writes the embedded default config to path. An
// existing file is never replaced.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := atomicfile.Write(path, rootpkg.DefaultConfigTOML, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Pipeline
// ///////////////////////////////////////////////

// generate renders cfg to its output path and reports it on stderr.
func generate(ctx context.Context, cfg *config.Config, stderr io.Writer) error {
	level, err := symbol.ParseLevel(cfg.QR.ErrorCorrection)
	if err != nil {
		return err
	}
	grid, err := symbol.Encode(cfg.QR.URL, level)
	if err != nil {
		return err
	}

	opts := render.Options{
		Config: cfg.Render(),
		Logger: slog.Default(),
	}

	if cfg.Logo.Path != "" {
		img, err := imageio.Load(ctx, paths.ExpandHome(cfg.Logo.Path))
		if err != nil {
			return fmt.Errorf("load logo: %w", err)
		}
		opts.Logo = img
	}

	if text := cfg.CaptionText(); text != "" {
		col, err := canvas.ParseHexColor(cfg.Caption.Color)
		if err != nil {
			return err
		}
		src, err := fonts.Load(ctx, cfg.Fonts(paths.Default().FontCache()))
		if err != nil {
			return err
		}
		slog.Debug("caption font", "font", src.Name())
		opts.Caption = text
		opts.CaptionColor = col
		opts.Glyphs = src
	}

	out, err := render.Render(grid, opts)
	if err != nil {
		return err
	}
	if err := imageio.WritePNG(cfg.Output.Path, out.Image()); err != nil {
		return err
	}
	slog.Debug("wrote output", "path", cfg.Output.Path, "width", out.Width(), "height", out.Height())
	fmt.Fprintf(stderr, "Wrote %s\n", cfg.Output.Path)
	return nil
}

// ///////////////////////////////////////////////
// Watch Mode
// ///////////////////////////////////////////////

// watchedFiles lists the local inputs of a render: the config file, the logo
// unless it is remote, and an explicit font file.
func watchedFiles(configPath string, cfg *config.Config) []string {
	var files []string
	if configPath != "" {
		files = append(files, configPath)
	}
	if cfg.Logo.Path != "" && !remote.IsURL(cfg.Logo.Path) {
		files = append(files, paths.ExpandHome(cfg.Logo.Path))
	}
	if cfg.Font.File != "" {
		files = append(files, paths.ExpandHome(cfg.Font.File))
	}
	return files
}

// watchLoop re-renders whenever an input file changes, until ctx is
// canceled. Reload and render errors are logged and the loop keeps going.
// The watched set follows the config, so pointing it at a new logo starts
// watching that file.
func watchLoop(ctx context.Context, opts *cliOptions, cfg *config.Config, stderr io.Writer) error {
	files := watchedFiles(opts.configPath, cfg)
	w, err := watch.New(files...)
	if err != nil {
		return err
	}
	defer func() { w.Close() }()
	if w.Polling() {
		slog.Info("using polling mode for file watching")
	}
	slog.Info("watching for changes", "files", len(files))

	for {
		select {
		case <-ctx.Done():
			slog.Info("received shutdown signal")
			return nil

		case <-w.Events():
			next, err := loadConfig(opts)
			if err != nil {
				slog.Error("reload config", "error", err)
				continue
			}
			if err := generate(ctx, next, stderr); err != nil {
				slog.Error("render failed", "error", err)
			}

			if nf := watchedFiles(opts.configPath, next); !slices.Equal(nf, files) {
				nw, err := watch.New(nf...)
				if err != nil {
					slog.Error("rewatch inputs", "error", err)
					continue
				}
				w.Close()
				w, files = nw, nf
				slog.Info("watching for changes", "files", len(files))
			}
		}
	}
}
