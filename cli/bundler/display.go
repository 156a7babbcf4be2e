package bundler

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// maxBreakdownFiles caps the breakdown unless details are requested
const maxBreakdownFiles = 10

// DisplayAnalysis prints the breakdown of one artifact
func DisplayAnalysis(w io.Writer, result *AnalysisResult, showDetails bool) {
	_, _ = fmt.Fprintf(w, "\n=== Bundle Analysis: %s ===\n", result.Output)
	_, _ = fmt.Fprintf(w, "Total bundle size: %s\n", formatBytesHuman(result.TotalBytes))

	if len(result.ExternalImports) > 0 {
		_, _ = fmt.Fprintln(w, "\nExternal imports (left to the consumer):")
		for _, imp := range result.ExternalImports {
			_, _ = fmt.Fprintf(w, "  - %s\n", imp)
		}
	}

	if len(result.InputFiles) > 0 {
		_, _ = fmt.Fprintln(w, "\nBundle breakdown:")

		maxFiles := maxBreakdownFiles
		if showDetails {
			maxFiles = len(result.InputFiles)
		}

		maxPathLen := 0
		for i, file := range result.InputFiles {
			if i >= maxFiles {
				break
			}
			if l := len(labelFor(file)); l > maxPathLen {
				maxPathLen = l
			}
		}

		for i, file := range result.InputFiles {
			if i >= maxFiles {
				_, _ = fmt.Fprintf(w, "  ... and %d more files\n", len(result.InputFiles)-maxFiles)
				break
			}

			label := labelFor(file)
			_, _ = fmt.Fprintf(w, "  %s%s  %8s  %5.1f%%\n",
				label,
				strings.Repeat(" ", maxPathLen-len(label)),
				formatBytesHuman(file.BytesInOutput),
				file.Percentage,
			)
		}
	}

	_, _ = fmt.Fprintln(w)
}

// DisplaySummary prints one line per artifact, largest first
func DisplaySummary(w io.Writer, results []*AnalysisResult) {
	if len(results) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w, "\n=== Bundle Size Summary ===")

	sorted := make([]*AnalysisResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalBytes > sorted[j].TotalBytes
	})

	const header = "OUTPUT"
	maxNameLen := len(header)
	for _, r := range sorted {
		if len(r.Output) > maxNameLen {
			maxNameLen = len(r.Output)
		}
	}

	_, _ = fmt.Fprintf(w, "%s%s  BUNDLE SIZE  FILES  EXTERNALS\n", header, strings.Repeat(" ", maxNameLen-len(header)))
	_, _ = fmt.Fprintf(w, "%s  -----------  -----  ---------\n", strings.Repeat("-", maxNameLen))

	var totalSize int
	for _, r := range sorted {
		totalSize += r.TotalBytes
		_, _ = fmt.Fprintf(w, "%s%s  %11s  %5d  %9d\n",
			r.Output,
			strings.Repeat(" ", maxNameLen-len(r.Output)),
			formatBytesHuman(r.TotalBytes),
			len(r.InputFiles),
			len(r.ExternalImports),
		)
	}

	_, _ = fmt.Fprintf(w, "%s  -----------  -----  ---------\n", strings.Repeat("-", maxNameLen))
	_, _ = fmt.Fprintf(w, "TOTAL%s  %11s\n", strings.Repeat(" ", maxNameLen-5), formatBytesHuman(totalSize))
	_, _ = fmt.Fprintln(w)
}

func labelFor(file FileAnalysis) string {
	label := truncatePath(file.Path, 50)
	if file.IsEntry {
		label += " <entry>"
	}
	return label
}

func formatBytesHuman(bytes int) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// truncatePath shortens a path if it's too long
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}
