package orchestrator

import (
	"fmt"
	"strings"

	"github.com/fluxbase-eu/preppy/internal/plan"
)

// Message is a diagnostic emitted by the bundler
type Message struct {
	Text   string
	File   string
	Line   int
	Column int
}

func (m Message) String() string {
	if m.File == "" {
		return m.Text
	}
	if m.Line == 0 {
		return fmt.Sprintf("%s: %s", m.File, m.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.File, m.Line, m.Column, m.Text)
}

// BundleFailure is a fatal bundling error. It aborts the remaining jobs.
type BundleFailure struct {
	Job      plan.Job
	Messages []Message
	Err      error
}

func (e *BundleFailure) Error() string {
	prefix := fmt.Sprintf("bundling %s as %s failed", e.Job.Input, strings.ToUpper(string(e.Job.Format)))
	if len(e.Messages) > 0 {
		texts := make([]string, len(e.Messages))
		for i, m := range e.Messages {
			texts[i] = m.String()
		}
		return prefix + ": " + strings.Join(texts, "; ")
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix
}

func (e *BundleFailure) Unwrap() error {
	return e.Err
}

// BundleWarning is a non-fatal bundler diagnostic, printed verbatim
type BundleWarning struct {
	Job     plan.Job
	Message Message
}

func (e *BundleWarning) Error() string {
	return e.Message.String()
}

// UndeclaredExternal is an external import whose package the manifest does
// not list in dependencies or peerDependencies
type UndeclaredExternal struct {
	Job     plan.Job
	Import  string
	Package string
}

func (e *UndeclaredExternal) Error() string {
	return fmt.Sprintf("%s imports %q but %s is not a dependency or peer dependency", e.Job.Output, e.Import, e.Package)
}

// TypeExtractionFailure is reported but never fails the run
type TypeExtractionFailure struct {
	Input string
	Err   error
}

func (e *TypeExtractionFailure) Error() string {
	return fmt.Sprintf("type extraction from %s failed: %v", e.Input, e.Err)
}

func (e *TypeExtractionFailure) Unwrap() error {
	return e.Err
}
