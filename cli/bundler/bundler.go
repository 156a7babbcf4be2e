// Package bundler implements the orchestrator's bundler contract with esbuild.
package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/fluxbase-eu/preppy/internal/manifest"
	"github.com/fluxbase-eu/preppy/internal/orchestrator"
	"github.com/fluxbase-eu/preppy/internal/plan"
)

// sourceFilter matches every file the loader plugin serves from the cache
const sourceFilter = `\.(m?js|cjs|jsx|m?ts|cts|tsx|json|ya?ml)$`

// umdHeader opens the UMD wrapper around a CommonJS bundle. CommonJS hands
// the factory the real require, AMD the listed externals and the browser
// global branch the camelCased globals of each external.
const umdHeader = `(function (global, factory) {
  ` + umdExternals + `
  typeof exports === "object" && typeof module !== "undefined" ? module.exports = factory(require) :
  typeof define === "function" && define.amd ? define(deps, function () {
    var mods = arguments;
    return factory(function (id) { return mods[deps.indexOf(id)]; });
  }) :
  (global = typeof globalThis !== "undefined" ? globalThis : global || self, global[%q] = factory(function (id) { return global[globals[id]]; }));
})(this, function (require) {
var module = { exports: {} }, exports = module.exports;`

// umdExternals is filled in once the build has reported its externals. It
// stays on one line so source map offsets are unchanged.
const umdExternals = `var deps = [], globals = {};`

// umdFooter unwraps a module whose only export is the default one
const umdFooter = `var __preppy_exports = module.exports;
return __preppy_exports && __preppy_exports.__esModule && Object.keys(__preppy_exports).length === 1 && "default" in __preppy_exports ? __preppy_exports["default"] : __preppy_exports;
});`

// Bundler bundles jobs in memory with esbuild
type Bundler struct {
	target   api.Target
	analysis io.Writer
	details  bool

	mu       sync.Mutex
	analyses []*AnalysisResult
}

// Option customizes a Bundler
type Option func(*Bundler)

// WithAnalysis prints a bundle breakdown to w after every job
func WithAnalysis(w io.Writer, showDetails bool) Option {
	return func(b *Bundler) {
		b.analysis = w
		b.details = showDetails
	}
}

// WithTarget sets the language level of the emitted code
func WithTarget(target api.Target) Option {
	return func(b *Bundler) { b.target = target }
}

// New creates a bundler
func New(opts ...Option) *Bundler {
	b := &Bundler{target: api.ES2018}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bundle builds req's module graph and returns the emitted files without
// writing them
func (b *Bundler) Bundle(ctx context.Context, req orchestrator.Request) (*orchestrator.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options := b.buildOptions(req)
	result := api.Build(options)

	out := &orchestrator.Output{Warnings: convertMessages(result.Warnings)}

	if len(result.Errors) > 0 {
		return out, &orchestrator.BundleFailure{Job: req.Job, Messages: convertMessages(result.Errors)}
	}

	for _, f := range result.OutputFiles {
		out.Files = append(out.Files, orchestrator.File{Path: f.Path, Contents: f.Contents})
		if f.Path == options.Outfile {
			out.Code = f.Contents
		}
	}
	if out.Code == nil {
		return out, &orchestrator.BundleFailure{Job: req.Job, Err: fmt.Errorf("no output emitted for %s", req.Job.Output)}
	}

	if result.Metafile != "" {
		var meta Metafile
		if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
			return out, fmt.Errorf("failed to parse metafile: %w", err)
		}
		analysis := analyzeMetafile(&meta, req.Job.Output, req.Root)
		out.Externals = analysis.ExternalImports
		if req.Job.Format == plan.FormatUMD {
			if err := linkExternals(out, options.Outfile); err != nil {
				return out, err
			}
		}

		b.mu.Lock()
		b.analyses = append(b.analyses, analysis)
		b.mu.Unlock()

		if b.analysis != nil {
			DisplayAnalysis(b.analysis, analysis, b.details)
		}
	}

	return out, nil
}

// Analyses returns the breakdown of every artifact bundled so far
func (b *Bundler) Analyses() []*AnalysisResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*AnalysisResult, len(b.analyses))
	copy(out, b.analyses)
	return out
}

func (b *Bundler) buildOptions(req orchestrator.Request) api.BuildOptions {
	job := req.Job
	minify := req.Stages.Has(orchestrator.StageMinify)

	options := api.BuildOptions{
		EntryPoints:       []string{job.Input},
		AbsWorkingDir:     req.Root,
		Outfile:           req.Destination,
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		LogLevel:          api.LogLevelSilent,
		Target:            b.target,
		Platform:          platformFor(job.Target),
		Format:            formatFor(job.Format),
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		KeepNames:         minify,
		Charset:           api.CharsetASCII,
		Banner:            map[string]string{"js": req.Banner},
		Plugins: []api.Plugin{
			externalPlugin(req),
			loaderPlugin(req),
		},
	}

	if req.Stages.Has(orchestrator.StageReplace) {
		options.Define = req.Constants.Defines()
	}

	if req.Sourcemap {
		options.Sourcemap = api.SourceMapLinked
	}

	if job.Format == plan.FormatUMD {
		options.Banner["js"] = req.Banner + "\n" + fmt.Sprintf(umdHeader, req.GlobalName)
		options.Footer = map[string]string{"js": umdFooter}
	}

	return options
}

// linkExternals writes the externals of a UMD bundle into its wrapper
func linkExternals(out *orchestrator.Output, outfile string) error {
	deps := out.Externals
	if deps == nil {
		deps = []string{}
	}
	globals := make(map[string]string, len(deps))
	for _, id := range deps {
		globals[id] = manifest.GlobalNameFor(id)
	}

	depsJSON, err := json.Marshal(deps)
	if err != nil {
		return fmt.Errorf("failed to encode externals: %w", err)
	}
	globalsJSON, err := json.Marshal(globals)
	if err != nil {
		return fmt.Errorf("failed to encode globals: %w", err)
	}
	line := fmt.Sprintf("var deps = %s, globals = %s;", depsJSON, globalsJSON)

	out.Code = []byte(strings.Replace(string(out.Code), umdExternals, line, 1))
	for i := range out.Files {
		if out.Files[i].Path == outfile {
			out.Files[i].Contents = out.Code
		}
	}
	return nil
}

// externalPlugin leaves every reference the classifier rejects unresolved
func externalPlugin(req orchestrator.Request) api.Plugin {
	return api.Plugin{
		Name: "preppy-external",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if args.Kind == api.ResolveEntryPoint || !req.Classifier.IsExternal(args.Path) {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{
						Path:     args.Path,
						External: true,
					}, nil
				})
		},
	}
}

// loaderPlugin serves sources through the run's warm cache and applies the
// data-file and transpile stages
func loaderPlugin(req orchestrator.Request) api.Plugin {
	emit := func(kind orchestrator.EventKind, path string) {
		if req.Progress != nil {
			req.Progress(orchestrator.Event{Kind: kind, Path: path})
		}
	}

	return api.Plugin{
		Name: "preppy-loader",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: sourceFilter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					loader, data, ok := loaderFor(args.Path, req.Stages)
					if !ok {
						return api.OnLoadResult{}, nil
					}

					emit(orchestrator.EventLoad, args.Path)
					mod, err := req.Cache.Load(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					contents := string(mod.Contents)
					if data {
						if contents, err = yamlToJSON(mod.Contents); err != nil {
							return api.OnLoadResult{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(args.Path), err)
						}
					}
					// The banner carries the only shebang of an executable
					if strings.HasPrefix(contents, "#!") {
						contents = stripHashbang(contents)
					}

					emit(orchestrator.EventTransform, args.Path)
					return api.OnLoadResult{
						Contents:   &contents,
						Loader:     loader,
						ResolveDir: filepath.Dir(args.Path),
					}, nil
				})
		},
	}
}

// loaderFor picks the esbuild loader for path. The second value reports
// whether the file is YAML that must be converted to JSON first. A false
// third value leaves the file to esbuild's default handling.
func loaderFor(path string, stages orchestrator.Stages) (api.Loader, bool, bool) {
	transpile := stages.Has(orchestrator.StageTranspile)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		if transpile {
			return api.LoaderJSX, false, true
		}
		return api.LoaderJS, false, true
	case ".jsx":
		return api.LoaderJSX, false, transpile
	case ".ts", ".mts", ".cts":
		return api.LoaderTS, false, transpile
	case ".tsx":
		return api.LoaderTSX, false, transpile
	case ".json":
		return api.LoaderJSON, false, stages.Has(orchestrator.StageJSON)
	case ".yaml", ".yml":
		return api.LoaderJSON, true, stages.Has(orchestrator.StageYAML)
	}
	return api.LoaderNone, false, false
}

// stripHashbang comments the hashbang line out, keeping line numbers intact
func stripHashbang(contents string) string {
	return "//" + contents
}

func platformFor(target plan.Target) api.Platform {
	switch target {
	case plan.TargetNode, plan.TargetCLI:
		return api.PlatformNode
	case plan.TargetBrowser:
		return api.PlatformBrowser
	default:
		return api.PlatformNeutral
	}
}

func formatFor(format plan.Format) api.Format {
	if format == plan.FormatESModule {
		return api.FormatESModule
	}
	// UMD is a CommonJS bundle inside the UMD wrapper
	return api.FormatCommonJS
}

func convertMessages(messages []api.Message) []orchestrator.Message {
	if len(messages) == 0 {
		return nil
	}
	out := make([]orchestrator.Message, len(messages))
	for i, m := range messages {
		out[i] = orchestrator.Message{Text: m.Text}
		if m.Location != nil {
			out[i].File = m.Location.File
			out[i].Line = m.Location.Line
			out[i].Column = m.Location.Column
		}
	}
	return out
}
