// Package orchestrator executes a bundle plan against an external bundler.
//
// Jobs run strictly one after another in plan order. A single warm module
// cache is owned by the orchestrator for the lifetime of a run and handed
// to every job. Warnings are collected and never change the outcome; the
// first fatal bundling error aborts the remaining queue, leaving already
// written artifacts in place.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fluxbase-eu/preppy/internal/external"
	"github.com/fluxbase-eu/preppy/internal/manifest"
	"github.com/fluxbase-eu/preppy/internal/modcache"
	"github.com/fluxbase-eu/preppy/internal/plan"
)

// Options configures a run
type Options struct {
	// Root is the project root; relative job paths resolve against it
	Root string

	Sourcemap bool
	Verbose   bool
}

// Artifact is a written bundle
type Artifact struct {
	Job   plan.Job
	Path  string
	Bytes int
}

// Summary describes the outcome of a run
type Summary struct {
	Artifacts []Artifact

	// Warnings holds *BundleWarning and *TypeExtractionFailure values
	Warnings []error

	// Failed is the job that aborted the run, if any
	Failed *plan.Job

	// TypesDir is set when type extraction succeeded
	TypesDir string
}

// Orchestrator runs plans
type Orchestrator struct {
	bundler  Bundler
	types    TypeExtractor
	reporter Reporter
	manifest *manifest.Manifest
	stages   []Stage
	cache    *modcache.Cache
	opts     Options
	logger   zerolog.Logger
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithTypeExtractor sets the collaborator for type declaration output
func WithTypeExtractor(t TypeExtractor) Option {
	return func(o *Orchestrator) { o.types = t }
}

// WithReporter sets the progress and size reporter
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithStages replaces the default pipeline stages
func WithStages(stages []Stage) Option {
	return func(o *Orchestrator) { o.stages = stages }
}

// New creates an orchestrator for the project described by m
func New(b Bundler, m *manifest.Manifest, opts Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		bundler:  b,
		reporter: nopReporter{},
		manifest: m,
		stages:   DefaultStages(),
		cache:    modcache.New(),
		opts:     opts,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Cache returns the warm module cache shared by all jobs
func (o *Orchestrator) Cache() *modcache.Cache {
	return o.cache
}

// Run executes p. It returns a *BundleFailure when a job fails; the summary
// is returned in every case.
func (o *Orchestrator) Run(ctx context.Context, p *plan.Plan) (*Summary, error) {
	summary := &Summary{}

	if p.Empty() {
		o.logger.Warn().Msg("Nothing to build")
		return summary, nil
	}

	for i, job := range p.Jobs {
		if p.Types != nil && p.Types.AfterJob == i {
			o.extractTypes(ctx, *p.Types, summary)
		}

		if err := ctx.Err(); err != nil {
			return summary, err
		}

		artifact, err := o.runJob(ctx, job, summary)
		if err != nil {
			failed := job
			summary.Failed = &failed
			o.logger.Error().Err(err).Str("input", job.Input).Str("output", job.Output).Msg("Bundling failed")
			return summary, err
		}
		summary.Artifacts = append(summary.Artifacts, artifact)
	}

	if p.Types != nil && p.Types.AfterJob >= len(p.Jobs) {
		o.extractTypes(ctx, *p.Types, summary)
	}

	stats := o.cache.Stats()
	o.logger.Debug().
		Int("artifacts", len(summary.Artifacts)).
		Int("warnings", len(summary.Warnings)).
		Int("cache_hits", stats.Hits).
		Int("cache_misses", stats.Misses).
		Msg("Run complete")

	return summary, nil
}

func (o *Orchestrator) runJob(ctx context.Context, job plan.Job, summary *Summary) (Artifact, error) {
	dest := o.resolve(job.Output)
	stages := SelectStages(o.stages, job)

	o.reporter.Event(Event{Kind: EventStart, Job: job})
	o.logger.Debug().
		Str("input", job.Input).
		Str("target", string(job.Target)).
		Str("format", string(job.Format)).
		Str("output", job.Output).
		Strs("stages", stageNames(stages)).
		Msg("Starting job")

	req := Request{
		Job:         job,
		Root:        o.opts.Root,
		Cache:       o.cache,
		Classifier:  external.New(job.Input),
		Stages:      stages,
		Constants:   NewConstants(o.manifest, job.Target),
		GlobalName:  o.manifest.GlobalName(),
		Banner:      o.banner(job),
		Sourcemap:   o.opts.Sourcemap,
		Destination: dest,
		Progress:    o.progress(job),
	}

	out, err := o.bundler.Bundle(ctx, req)
	if out != nil {
		o.collectWarnings(job, out.Warnings, summary)
	}
	if err != nil {
		var failure *BundleFailure
		if errors.As(err, &failure) {
			failure.Job = job
			return Artifact{}, failure
		}
		return Artifact{}, &BundleFailure{Job: job, Err: err}
	}

	files := out.Files
	if len(files) == 0 {
		files = []File{{Path: dest, Contents: out.Code}}
	}
	for _, f := range files {
		if err := writeFile(f.Path, f.Contents); err != nil {
			return Artifact{}, &BundleFailure{Job: job, Err: err}
		}
	}

	if stages.Has(StageExecutable) {
		if err := os.Chmod(dest, 0755); err != nil { //nolint:gosec // executables must be runnable
			return Artifact{}, &BundleFailure{Job: job, Err: fmt.Errorf("failed to mark %s executable: %w", job.Output, err)}
		}
	}

	if len(out.Externals) > 0 {
		o.logger.Debug().Strs("externals", out.Externals).Str("output", job.Output).Msg("External imports")
		o.checkExternals(job, out.Externals, summary)
	}

	o.reporter.Artifact(out.Code, job.Output, job.IsLibrary())

	return Artifact{Job: job, Path: dest, Bytes: len(out.Code)}, nil
}

func (o *Orchestrator) collectWarnings(job plan.Job, messages []Message, summary *Summary) {
	for _, m := range messages {
		w := &BundleWarning{Job: job, Message: m}
		summary.Warnings = append(summary.Warnings, w)
		o.logger.Warn().Str("output", job.Output).Msg(w.Error())
	}
}

// checkExternals warns about imports a consumer's install will not provide
func (o *Orchestrator) checkExternals(job plan.Job, externals []string, summary *Summary) {
	seen := make(map[string]bool)
	for _, ref := range externals {
		if external.IsBuiltin(ref) {
			continue
		}
		pkg := manifest.PackageName(ref)
		if seen[pkg] || o.manifest.HasDependency(pkg) {
			continue
		}
		seen[pkg] = true

		w := &UndeclaredExternal{Job: job, Import: ref, Package: pkg}
		summary.Warnings = append(summary.Warnings, w)
		o.logger.Warn().Str("output", job.Output).Str("package", pkg).Msg(w.Error())
	}
}

func (o *Orchestrator) extractTypes(ctx context.Context, step plan.TypeStep, summary *Summary) {
	if o.types == nil {
		return
	}

	destDir := o.resolve(step.DestinationDir)
	o.logger.Info().Str("input", step.Input).Str("dir", step.DestinationDir).Msg("Extracting types")

	if err := o.types.Extract(ctx, o.resolve(step.Input), destDir, o.opts.Verbose); err != nil {
		failure := &TypeExtractionFailure{Input: step.Input, Err: err}
		summary.Warnings = append(summary.Warnings, failure)
		o.logger.Warn().Err(err).Str("input", step.Input).Msg("Type extraction failed")
		return
	}
	summary.TypesDir = destDir
}

// progress wraps the reporter for one job. The bundler may call it from
// several goroutines.
func (o *Orchestrator) progress(job plan.Job) func(Event) {
	var mu sync.Mutex
	loaded := 0
	return func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Kind == EventLoad {
			loaded++
		}
		ev.Job = job
		ev.Loaded = loaded
		o.reporter.Event(ev)
	}
}

func (o *Orchestrator) banner(job plan.Job) string {
	banner := o.manifest.Banner()
	if job.Target == plan.TargetCLI {
		return Shebang + "\n\n" + banner
	}
	return banner
}

func (o *Orchestrator) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(o.opts.Root, filepath.FromSlash(path))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil { //nolint:gosec // output directories are public
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // artifacts are public
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func stageNames(stages Stages) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = strings.ToLower(string(s))
	}
	return names
}
