package orchestrator

import (
	"path/filepath"
	"regexp"

	"github.com/fluxbase-eu/preppy/internal/plan"
)

// StageKind names an optional step of the bundling pipeline
type StageKind string

const (
	// StageReplace substitutes the build-time constants
	StageReplace StageKind = "replace"
	// StageYAML loads .yaml/.yml imports as data modules
	StageYAML StageKind = "yaml"
	// StageJSON loads .json imports as data modules
	StageJSON StageKind = "json"
	// StageTranspile compiles TypeScript and JSX sources
	StageTranspile StageKind = "transpile"
	// StageMinify minifies the emitted code
	StageMinify StageKind = "minify"
	// StageExecutable marks the written artifact executable
	StageExecutable StageKind = "executable"
)

// Stage pairs a pipeline step with the predicate selecting it for a job
type Stage struct {
	Kind    StageKind
	Applies func(job plan.Job) bool
}

// Stages is the ordered list of stages selected for one job
type Stages []StageKind

// Has reports whether kind was selected
func (s Stages) Has(kind StageKind) bool {
	for _, k := range s {
		if k == kind {
			return true
		}
	}
	return false
}

var minifiedName = regexp.MustCompile(`\.min\.`)

// Always selects a stage for every job
func Always(plan.Job) bool { return true }

// ShouldMinify selects UMD builds, executables and outputs following the
// "*.min.*" naming convention. Library and node builds stay readable.
func ShouldMinify(job plan.Job) bool {
	return job.Format == plan.FormatUMD ||
		job.Target == plan.TargetCLI ||
		minifiedName.MatchString(filepath.Base(job.Output))
}

// IsExecutable selects CLI builds
func IsExecutable(job plan.Job) bool {
	return job.Target == plan.TargetCLI
}

// DefaultStages returns the standard pipeline in application order
func DefaultStages() []Stage {
	return []Stage{
		{Kind: StageReplace, Applies: Always},
		{Kind: StageYAML, Applies: Always},
		{Kind: StageJSON, Applies: Always},
		{Kind: StageTranspile, Applies: Always},
		{Kind: StageMinify, Applies: ShouldMinify},
		{Kind: StageExecutable, Applies: IsExecutable},
	}
}

// SelectStages evaluates every predicate against job, keeping order
func SelectStages(stages []Stage, job plan.Job) Stages {
	selected := make(Stages, 0, len(stages))
	for _, stage := range stages {
		if stage.Applies != nil && stage.Applies(job) {
			selected = append(selected, stage.Kind)
		}
	}
	return selected
}
