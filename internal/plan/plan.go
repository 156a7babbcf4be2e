// Package plan enumerates the ordered bundle jobs for a project.
//
// Planning is pure: it only looks at the resolved entries and the output
// matrix, never at the filesystem or the bundler. The resulting Plan is
// computed once before any bundling starts and is not modified afterwards.
package plan

import (
	"fmt"
	"path"

	"github.com/fluxbase-eu/preppy/internal/entry"
	"github.com/fluxbase-eu/preppy/internal/matrix"
)

// Target is the runtime a bundle is produced for
type Target string

const (
	TargetNode    Target = "node"
	TargetLibrary Target = "lib"
	TargetBrowser Target = "browser"
	TargetCLI     Target = "cli"
)

// Format is the module format of a bundle
type Format string

const (
	FormatCommonJS Format = "cjs"
	FormatESModule Format = "esm"
	FormatUMD      Format = "umd"
)

var validTargets = map[Target]bool{
	TargetNode:    true,
	TargetLibrary: true,
	TargetBrowser: true,
	TargetCLI:     true,
}

var validFormats = map[Format]bool{
	FormatCommonJS: true,
	FormatESModule: true,
	FormatUMD:      true,
}

// disallowed lists target/format combinations that never occur
var disallowed = map[Target]map[Format]bool{
	TargetNode:    {FormatUMD: true},
	TargetBrowser: {FormatCommonJS: true, FormatUMD: true},
	TargetCLI:     {FormatESModule: true, FormatUMD: true},
}

// InvalidJobError is returned when constructing a job from an unknown or
// disallowed target/format combination
type InvalidJobError struct {
	Target Target
	Format Format
	Reason string
}

func (e *InvalidJobError) Error() string {
	return fmt.Sprintf("invalid bundle job %s/%s: %s", e.Target, e.Format, e.Reason)
}

// Job is a single unit of bundling work
type Job struct {
	Input  string
	Target Target
	Format Format
	Output string
}

// NewJob validates the combination and returns the job
func NewJob(input string, target Target, format Format, output string) (Job, error) {
	switch {
	case !validTargets[target]:
		return Job{}, &InvalidJobError{Target: target, Format: format, Reason: "unknown target"}
	case !validFormats[format]:
		return Job{}, &InvalidJobError{Target: target, Format: format, Reason: "unknown format"}
	case disallowed[target][format]:
		return Job{}, &InvalidJobError{Target: target, Format: format, Reason: "combination is not supported"}
	case input == "":
		return Job{}, &InvalidJobError{Target: target, Format: format, Reason: "missing input"}
	case output == "":
		return Job{}, &InvalidJobError{Target: target, Format: format, Reason: "missing output"}
	}
	return Job{Input: input, Target: target, Format: format, Output: output}, nil
}

// IsLibrary reports whether the artifact is consumed as a library, as
// opposed to being executed
func (j Job) IsLibrary() bool {
	return j.Target != TargetCLI
}

func (j Job) String() string {
	return fmt.Sprintf("%s -> %s [%s/%s]", j.Input, j.Output, j.Target, j.Format)
}

// TypeStep extracts type declarations from a typed library source. It runs
// after all library bundle jobs and is not itself a bundle job.
type TypeStep struct {
	Input          string
	DestinationDir string

	// AfterJob is the number of jobs that complete before the step runs
	AfterJob int
}

// Plan is the ordered work of a run
type Plan struct {
	Jobs  []Job
	Types *TypeStep
}

// Empty reports whether there is nothing to build
func (p *Plan) Empty() bool {
	return len(p.Jobs) == 0 && p.Types == nil
}

// New enumerates jobs with a fixed precedence: node (cjs before esm) or
// library (esm, cjs, umd), then browser (esm, umd) and finally binary.
// No resolvable entry yields an empty plan, not an error.
func New(entries entry.Set, outputs matrix.Matrix) (*Plan, error) {
	p := &Plan{}

	type candidate struct {
		input  string
		target Target
		format Format
		output string
	}
	var candidates []candidate
	add := func(input string, target Target, format Format, output string) {
		if output == "" {
			return
		}
		candidates = append(candidates, candidate{input, target, format, output})
	}

	switch {
	case entries.Node != "":
		add(entries.Node, TargetNode, FormatCommonJS, outputs.Main)
		add(entries.Node, TargetNode, FormatESModule, outputs.Module)
	case entries.Library != "":
		add(entries.Library, TargetLibrary, FormatESModule, outputs.Module)
		add(entries.Library, TargetLibrary, FormatCommonJS, outputs.Main)
		if entries.Browser == "" {
			add(entries.Library, TargetLibrary, FormatUMD, outputs.UMD)
		}
		if entry.IsTyped(entries.Library) && outputs.Types != "" {
			p.Types = &TypeStep{
				Input:          entries.Library,
				DestinationDir: path.Dir(outputs.Types),
				AfterJob:       len(candidates),
			}
		}
	}

	if entries.Browser != "" {
		add(entries.Browser, TargetBrowser, FormatESModule, outputs.Browser)
		add(entries.Browser, TargetLibrary, FormatUMD, outputs.UMD)
	}

	if entries.Binary != "" {
		add(entries.Binary, TargetCLI, FormatCommonJS, outputs.Binary)
	}

	for _, s := range candidates {
		job, err := NewJob(s.input, s.target, s.format, s.output)
		if err != nil {
			return nil, err
		}
		p.Jobs = append(p.Jobs, job)
	}

	return p, nil
}
