// Package sizereport prints progress and per-artifact size information.
package sizereport

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/fluxbase-eu/preppy/internal/orchestrator"
)

// DefaultPathLimit is the number of trailing path characters shown in progress lines
const DefaultPathLimit = 50

// Sizes holds the measured sizes of an artifact
type Sizes struct {
	Raw    int
	Gzip   int
	Brotli int
}

// Measure computes the raw and compressed sizes of code. Compressed sizes
// are only computed when compressed is true.
func Measure(code []byte, compressed bool) (Sizes, error) {
	sizes := Sizes{Raw: len(code)}
	if !compressed {
		return sizes, nil
	}

	var gz bytes.Buffer
	gw, err := gzip.NewWriterLevel(&gz, gzip.BestCompression)
	if err != nil {
		return sizes, err
	}
	if _, err := gw.Write(code); err != nil {
		return sizes, err
	}
	if err := gw.Close(); err != nil {
		return sizes, err
	}
	sizes.Gzip = gz.Len()

	var br bytes.Buffer
	bw := brotli.NewWriterLevel(&br, brotli.BestCompression)
	if _, err := bw.Write(code); err != nil {
		return sizes, err
	}
	if err := bw.Close(); err != nil {
		return sizes, err
	}
	sizes.Brotli = br.Len()

	return sizes, nil
}

// Headline renders the line printed when a job starts
type Headline func(ev orchestrator.Event) string

// Reporter implements orchestrator.Reporter
type Reporter struct {
	w        io.Writer
	logger   zerolog.Logger
	root     string
	quiet    bool
	noSizes  bool
	ci       bool
	limit    int
	headline Headline
}

// Option customizes a Reporter
type Option func(*Reporter)

// WithLogger routes progress lines to logger at debug level
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// WithHeadline sets the renderer for job start lines
func WithHeadline(h Headline) Option {
	return func(r *Reporter) { r.headline = h }
}

// WithQuiet suppresses all output
func WithQuiet(quiet bool) Option {
	return func(r *Reporter) { r.quiet = quiet }
}

// WithSizes toggles the per-artifact size lines
func WithSizes(enabled bool) Option {
	return func(r *Reporter) { r.noSizes = !enabled }
}

// WithProgress overrides whether per-file progress lines are logged
func WithProgress(enabled bool) Option {
	return func(r *Reporter) { r.ci = !enabled }
}

// WithRoot sets the directory progress paths are shown relative to
func WithRoot(root string) Option {
	return func(r *Reporter) { r.root = root }
}

// New creates a reporter writing to w. Progress lines are disabled when
// running under CI.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		w:      w,
		logger: zerolog.Nop(),
		ci:     os.Getenv("CI") != "",
		limit:  DefaultPathLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Event handles progress events
func (r *Reporter) Event(ev orchestrator.Event) {
	if r.quiet {
		return
	}

	switch ev.Kind {
	case orchestrator.EventStart:
		if r.headline != nil {
			_, _ = fmt.Fprintln(r.w, r.headline(ev))
		}
	case orchestrator.EventTransform:
		if r.ci {
			return
		}
		file := r.normalize(ev.Path)
		if strings.Contains(file, ":") {
			return
		}
		r.logger.Debug().Msg(fmt.Sprintf("Bundling: %s [%d]", shorten(file, r.limit), ev.Loaded))
	}
}

// Artifact prints the size line for a written artifact. Library artifacts
// also get gzip and brotli sizes.
func (r *Reporter) Artifact(code []byte, path string, isLibrary bool) {
	if r.quiet || r.noSizes {
		return
	}

	sizes, err := Measure(code, isLibrary)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("Failed to measure artifact")
		return
	}
	_, _ = fmt.Fprintln(r.w, FormatLine(path, sizes, isLibrary))
}

// FormatLine renders the size line of an artifact
func FormatLine(path string, sizes Sizes, compressed bool) string {
	line := fmt.Sprintf("  Wrote %s  %s", path, humanize.Bytes(uint64(sizes.Raw)))
	if compressed {
		line += fmt.Sprintf("  (gzip %s, brotli %s)",
			humanize.Bytes(uint64(sizes.Gzip)),
			humanize.Bytes(uint64(sizes.Brotli)))
	}
	return line
}

func (r *Reporter) normalize(path string) string {
	if r.root != "" {
		if rel, err := filepath.Rel(r.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// shorten keeps the trailing limit characters of path
func shorten(path string, limit int) string {
	if len(path) <= limit {
		return path
	}
	return "…" + path[len(path)-limit:]
}
