package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/qrbrand/internal/paths"
)

// fontExts are the file extensions [Find] accepts.
var fontExts = []string{".ttf", ".otf", ".woff", ".woff2"}

// Options selects where the caption font comes from. The first non-empty
// source in field order wins; with none set the embedded font is used.
type Options struct {
	// File is an explicit font path. Failing to load it is an error.
	File string
	// Search holds doublestar patterns (e.g. "~/Library/Fonts/**/Inter*.ttf")
	// tried in order. Patterns that match nothing are skipped.
	Search []string
	// Google is a "google:Family:Weight" spec fetched from Google Fonts.
	Google string
	// CacheDir stores downloaded Google fonts.
	CacheDir string
}

// Load resolves the glyph source described by opts.
func Load(ctx context.Context, opts Options) (*Source, error) {
	if opts.File != "" {
		return LoadFile(paths.ExpandHome(opts.File))
	}

	if len(opts.Search) > 0 {
		path, err := Find(opts.Search)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
		}
		if path != "" {
			slog.Debug("font found by search", "path", path)
			return LoadFile(path)
		}
		slog.Debug("no font matched search patterns", "patterns", opts.Search)
	}

	if opts.Google != "" {
		data, err := FetchGoogle(ctx, opts.Google, opts.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
		}
		return Parse(opts.Google, data)
	}

	return Default()
}

// Find returns the first font file matched by patterns, trying each
// pattern in order and the matches of one pattern in lexical order. It
// returns "" when nothing matches. A leading "~/" expands to the home
// directory.
func Find(patterns []string) (string, error) {
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(paths.ExpandHome(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return "", fmt.Errorf("font search pattern %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if slices.Contains(fontExts, strings.ToLower(filepath.Ext(m))) {
				return m, nil
			}
		}
	}
	return "", nil
}
