package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/fluxbase-eu/preppy/internal/external"
	"github.com/fluxbase-eu/preppy/internal/manifest"
	"github.com/fluxbase-eu/preppy/internal/modcache"
	"github.com/fluxbase-eu/preppy/internal/plan"
)

// EnvPrefix is the expression prefix of the build-time constants
const EnvPrefix = "process.env."

// Shebang is prepended to executable artifacts
const Shebang = "#!/usr/bin/env node"

// Constants are substituted as literals during bundling
type Constants struct {
	Name    string
	Version string
	Target  plan.Target
}

// NewConstants derives the constants of a job
func NewConstants(m *manifest.Manifest, target plan.Target) Constants {
	return Constants{Name: m.Name, Version: m.Version, Target: target}
}

// Defines returns the expression to JSON literal replacement map
func (c Constants) Defines() map[string]string {
	return map[string]string{
		EnvPrefix + "NAME":    jsonString(c.Name),
		EnvPrefix + "VERSION": jsonString(c.Version),
		EnvPrefix + "TARGET":  jsonString(string(c.Target)),
	}
}

func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// Request describes one bundle invocation
type Request struct {
	Job        plan.Job
	Root       string
	Cache      *modcache.Cache
	Classifier external.Classifier
	Stages     Stages
	Constants  Constants
	GlobalName string
	Banner     string
	Sourcemap  bool

	// Destination is the absolute path of the artifact
	Destination string

	// Progress receives load and transform events, may be nil
	Progress func(Event)
}

// File is an emitted file
type File struct {
	Path     string
	Contents []byte
}

// Output is the result of a successful bundle invocation
type Output struct {
	// Code is the emitted artifact text
	Code []byte

	// Files holds the artifact and its sourcemap, if any, by absolute path
	Files []File

	// Warnings are non-fatal diagnostics
	Warnings []Message

	// Externals lists the module references left unresolved
	Externals []string
}

// Bundler produces a bundle from a request. Fatal errors are returned as
// *BundleFailure. Implementations must not write to disk.
type Bundler interface {
	Bundle(ctx context.Context, req Request) (*Output, error)
}

// TypeExtractor writes declaration files for a typed source
type TypeExtractor interface {
	Extract(ctx context.Context, source, destDir string, verbose bool) error
}

// EventKind classifies progress events
type EventKind string

const (
	EventStart     EventKind = "start"
	EventLoad      EventKind = "load"
	EventTransform EventKind = "transform"
)

// Event is an observational progress event
type Event struct {
	Kind   EventKind
	Job    plan.Job
	Path   string
	Loaded int
}

// Reporter observes the run. It has no influence on the outcome.
type Reporter interface {
	Event(ev Event)
	Artifact(code []byte, path string, isLibrary bool)
}

type nopReporter struct{}

func (nopReporter) Event(Event)                   {}
func (nopReporter) Artifact([]byte, string, bool) {}
