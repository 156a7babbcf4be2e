package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fluxbase-eu/preppy/cli/bundler"
	"github.com/fluxbase-eu/preppy/cli/output"
	"github.com/fluxbase-eu/preppy/internal/orchestrator"
	"github.com/fluxbase-eu/preppy/internal/project"
	"github.com/fluxbase-eu/preppy/internal/sizereport"
	"github.com/fluxbase-eu/preppy/internal/typegen"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Bundle every artifact package.json declares",
	Long: `Bundle every artifact package.json declares. Jobs run one after another;
the first fatal bundling error stops the run and leaves earlier artifacts in
place.

Examples:
  preppy build
  preppy build --input-lib src/main.ts --sourcemap
  preppy build --input-node ./test/src/index.js --output-folder ./test/lib
  preppy build --input-binary src/cli.js --output-binary bin/tool`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// buildSettings is everything a build run needs from the command line
type buildSettings struct {
	Root    string
	Flags   project.Flags
	Sizes   bool
	Analyze bool

	// Progress logs every transformed file; off under CI and off a terminal
	Progress bool
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeBuild(ctx, buildSettings{
		Root:     rootDir,
		Flags:    currentFlags(),
		Sizes:    sizesEnabled(),
		Analyze:  analyze,
		Progress: os.Getenv("CI") == "" && term.IsTerminal(int(os.Stderr.Fd())), //nolint:gosec // file descriptors fit in int
	}, cmd.OutOrStdout(), log.Logger)
}

// executeBuild plans and runs a build, printing progress to w
func executeBuild(ctx context.Context, s buildSettings, w io.Writer, logger zerolog.Logger) error {
	p, err := project.Load(s.Root, s.Flags)
	if err != nil {
		return err
	}

	for _, warning := range p.Warnings {
		logger.Warn().Msg(warning.Error())
	}

	var bundlerOpts []bundler.Option
	if s.Analyze {
		bundlerOpts = append(bundlerOpts, bundler.WithAnalysis(w, s.Flags.Verbose))
	}
	b := bundler.New(bundlerOpts...)

	reporter := sizereport.New(w,
		sizereport.WithLogger(logger),
		sizereport.WithQuiet(s.Flags.Quiet),
		sizereport.WithSizes(s.Sizes),
		sizereport.WithProgress(s.Progress),
		sizereport.WithRoot(p.Root),
		sizereport.WithHeadline(func(ev orchestrator.Event) string {
			return output.Headline(p.Manifest.Name, p.Manifest.Version, string(ev.Job.Format), ev.Job.Output)
		}),
	)

	o := orchestrator.New(b, p.Manifest,
		orchestrator.Options{
			Root:      p.Root,
			Sourcemap: s.Flags.Sourcemap,
			Verbose:   s.Flags.Verbose,
		},
		orchestrator.WithTypeExtractor(typegen.New(p.Root, typegen.WithLogger(logger))),
		orchestrator.WithReporter(reporter),
		orchestrator.WithLogger(logger),
	)

	summary, err := o.Run(ctx, p.Plan)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(output.FormatTable, false, s.Flags.Quiet)
	formatter.Writer = w

	if s.Flags.Verbose && len(summary.Artifacts) > 0 {
		formatter.PrintTable(summaryTable(summary))
		if s.Analyze {
			bundler.DisplaySummary(w, b.Analyses())
		}
	}

	if p.Plan.Empty() {
		return nil
	}
	formatter.PrintLine(output.Done())
	return nil
}

func summaryTable(summary *orchestrator.Summary) output.TableData {
	data := output.TableData{
		Headers: []string{"OUTPUT", "TARGET", "FORMAT", "SIZE"},
	}
	for _, a := range summary.Artifacts {
		data.Rows = append(data.Rows, []string{
			a.Job.Output,
			string(a.Job.Target),
			string(a.Job.Format),
			humanize.Bytes(uint64(a.Bytes)),
		})
	}
	if summary.TypesDir != "" {
		data.Rows = append(data.Rows, []string{summary.TypesDir, "types", "d.ts", "-"})
	}
	if n := len(summary.Warnings); n > 0 {
		data.Rows = append(data.Rows, []string{fmt.Sprintf("%d warning(s)", n), "", "", ""})
	}
	return data
}
