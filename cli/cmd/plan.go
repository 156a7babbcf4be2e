package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/preppy/cli/output"
	"github.com/fluxbase-eu/preppy/internal/project"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the jobs a build would run",
	Long: `Resolve entries and outputs and print the ordered bundle jobs without
bundling anything.

Examples:
  preppy plan
  preppy plan --output json
  preppy plan --input-browser src/browser.js`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

// jobView is one planned job as printed by the plan command
type jobView struct {
	Input  string `json:"input" yaml:"input"`
	Target string `json:"target" yaml:"target"`
	Format string `json:"format" yaml:"format"`
	Output string `json:"output" yaml:"output"`
}

// typesView is the planned type extraction step
type typesView struct {
	Input          string `json:"input" yaml:"input"`
	DestinationDir string `json:"destination_dir" yaml:"destination_dir"`
	AfterJob       int    `json:"after_job" yaml:"after_job"`
}

// planView is the printable form of a project's plan
type planView struct {
	Package  string     `json:"package" yaml:"package"`
	Jobs     []jobView  `json:"jobs" yaml:"jobs"`
	Types    *typesView `json:"types,omitempty" yaml:"types,omitempty"`
	Warnings []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newPlanView(p *project.Project) planView {
	view := planView{
		Package: p.Manifest.Name + "@" + p.Manifest.Version,
		Jobs:    make([]jobView, 0, len(p.Plan.Jobs)),
	}
	for _, job := range p.Plan.Jobs {
		view.Jobs = append(view.Jobs, jobView{
			Input:  job.Input,
			Target: string(job.Target),
			Format: string(job.Format),
			Output: job.Output,
		})
	}
	if t := p.Plan.Types; t != nil {
		view.Types = &typesView{Input: t.Input, DestinationDir: t.DestinationDir, AfterJob: t.AfterJob}
	}
	for _, w := range p.Warnings {
		view.Warnings = append(view.Warnings, w.Error())
	}
	return view
}

// Table renders the jobs in execution order with the type step in place
func (v planView) Table() output.TableData {
	data := output.TableData{Headers: []string{"#", "INPUT", "TARGET", "FORMAT", "OUTPUT"}}

	typesRow := func() []string {
		return []string{"-", v.Types.Input, "types", "d.ts", v.Types.DestinationDir}
	}
	for i, job := range v.Jobs {
		if v.Types != nil && v.Types.AfterJob == i {
			data.Rows = append(data.Rows, typesRow())
		}
		data.Rows = append(data.Rows, []string{strconv.Itoa(i + 1), job.Input, job.Target, job.Format, job.Output})
	}
	if v.Types != nil && v.Types.AfterJob >= len(v.Jobs) {
		data.Rows = append(data.Rows, typesRow())
	}
	return data
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := project.Load(rootDir, currentFlags())
	if err != nil {
		return err
	}

	f := GetFormatter()
	f.Writer = cmd.OutOrStdout()
	f.ErrWriter = cmd.ErrOrStderr()

	view := newPlanView(p)
	if f.Format == output.FormatTable {
		for _, w := range view.Warnings {
			f.PrintWarning(w)
		}
		if len(view.Jobs) == 0 {
			f.PrintLine("Nothing to build")
			return nil
		}
	}
	return f.Print(view)
}
