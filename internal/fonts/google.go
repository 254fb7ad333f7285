// google.go downloads font files from the Google Fonts CSS API.
//
// Font specs use the format "google:FAMILY:WEIGHT" (e.g. "google:Inter:800").
// Downloaded fonts are cached locally so they aren't re-fetched on every run.

package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"tools.zach/dev/qrbrand/internal/atomicfile"
	"tools.zach/dev/qrbrand/internal/remote"
)

// googleCSSURL is the Google Fonts CSS endpoint. Tests point it at a local
// server.
var googleCSSURL = "https://fonts.googleapis.com/css2"

// googleUserAgent makes Google serve WOFF2 files, which [Parse] can unpack.
const googleUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

// fontURLRe extracts a font file URL from a CSS src descriptor.
// Matches: url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2)
var fontURLRe = regexp.MustCompile(`url\((https?://[^)]+)\)`)

// ParseGoogleSpec parses a "google:Family:Weight" spec into its parts.
// Returns family, weight, and whether the spec is valid.
func ParseGoogleSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// googleCacheFile returns the cache path for a family and weight.
func googleCacheFile(cacheDir, family, weight string) string {
	name := strings.ReplaceAll(family, " ", "_")
	return filepath.Join(cacheDir, fmt.Sprintf("%s-%s.font", name, weight))
}

// FetchGoogle downloads a font from Google Fonts, caching the raw bytes in
// cacheDir. A cached copy is returned without touching the network. An
// empty cacheDir disables caching.
func FetchGoogle(ctx context.Context, spec, cacheDir string) ([]byte, error) {
	family, weight, ok := ParseGoogleSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	var cacheFile string
	if cacheDir != "" {
		cacheFile = googleCacheFile(cacheDir, family, weight)
		if data, err := os.ReadFile(cacheFile); err == nil {
			slog.Debug("using cached google font", "family", family, "weight", weight, "path", cacheFile)
			return data, nil
		}
	}

	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", googleCSSURL, url.QueryEscape(family), url.QueryEscape(weight))
	css, err := remote.Get(ctx, cssURL, googleUserAgent, remote.MaxTextBytes)
	if err != nil {
		return nil, fmt.Errorf("fetching CSS from Google Fonts: %w", err)
	}

	fontURL := pickFontURL(string(css))
	if fontURL == "" {
		return nil, fmt.Errorf("no font URL found in Google Fonts CSS response for %s wght@%s", family, weight)
	}

	data, err := remote.Get(ctx, fontURL, googleUserAgent, remote.MaxFontBytes)
	if err != nil {
		return nil, fmt.Errorf("downloading font file: %w", err)
	}

	if cacheFile != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			slog.Warn("failed to create font cache dir", "path", cacheDir, "error", err)
		} else if err := atomicfile.Write(cacheFile, data, 0o644); err != nil {
			slog.Warn("failed to cache font", "path", cacheFile, "error", err)
		}
	}
	return data, nil
}

// pickFontURL selects the font file for the latin subset. Google splits a
// family into one @font-face per unicode subset, each preceded by a
// comment naming it. Without a latin block the last URL wins.
func pickFontURL(css string) string {
	var last string
	for _, block := range strings.Split(css, "/*") {
		m := fontURLRe.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		last = m[1]
		subset, _, found := strings.Cut(block, "*/")
		if found && strings.TrimSpace(subset) == "latin" {
			return m[1]
		}
	}
	return last
}
