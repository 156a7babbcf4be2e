// Package project loads a project and computes its bundle plan.
package project

import (
	"fmt"
	"path/filepath"

	"github.com/fluxbase-eu/preppy/internal/entry"
	"github.com/fluxbase-eu/preppy/internal/manifest"
	"github.com/fluxbase-eu/preppy/internal/matrix"
	"github.com/fluxbase-eu/preppy/internal/plan"
)

// Flags are the command line settings of a run
type Flags struct {
	Verbose   bool
	Quiet     bool
	Sourcemap bool

	InputNode    string
	InputLibrary string
	InputBrowser string
	InputBinary  string

	OutputFolder string
	OutputBinary string
}

// Project is a loaded project with its computed plan. Nothing in it changes
// once Load returns.
type Project struct {
	Root     string
	Manifest *manifest.Manifest
	Entries  entry.Set
	Outputs  matrix.Matrix
	Plan     *plan.Plan

	// Warnings holds *matrix.MissingOutputError values
	Warnings []error
}

// Load reads the manifest below root and plans the run
func Load(root string, flags Flags) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	m, err := manifest.Load(abs)
	if err != nil {
		return nil, err
	}

	return New(abs, m, flags, entry.DirProbe{Root: abs})
}

// New plans a run for an already loaded manifest
func New(root string, m *manifest.Manifest, flags Flags, probe entry.Probe) (*Project, error) {
	entries, err := entry.Resolve(entry.Overrides{
		Node:    flags.InputNode,
		Library: flags.InputLibrary,
		Browser: flags.InputBrowser,
		Binary:  flags.InputBinary,
	}, probe)
	if err != nil {
		return nil, err
	}

	outputs, warnings := matrix.Build(entries, m, matrix.Options{
		OutputFolder: filepath.ToSlash(flags.OutputFolder),
		Binary:       flags.OutputBinary,
	})

	p, err := plan.New(entries, outputs)
	if err != nil {
		return nil, err
	}

	return &Project{
		Root:     root,
		Manifest: m,
		Entries:  entries,
		Outputs:  outputs,
		Plan:     p,
		Warnings: warnings,
	}, nil
}
