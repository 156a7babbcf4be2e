package bundler

import (
	"path/filepath"
	"sort"
	"strings"
)

// analyzeMetafile summarizes the first output of an esbuild metafile.
// Input paths are reported relative to root; entry marks the job input.
func analyzeMetafile(meta *Metafile, output, root string) *AnalysisResult {
	result := &AnalysisResult{Output: output}

	// A job has a single entry point, so ignore source map outputs
	for outPath, out := range meta.Outputs {
		if strings.HasSuffix(outPath, ".map") {
			continue
		}
		result.TotalBytes = out.Bytes

		seen := make(map[string]bool)
		for _, imp := range out.Imports {
			if imp.External && !seen[imp.Path] {
				seen[imp.Path] = true
				result.ExternalImports = append(result.ExternalImports, imp.Path)
			}
		}

		for inputPath, contrib := range out.Inputs {
			info, ok := meta.Inputs[inputPath]
			if !ok {
				continue
			}

			percentage := 0.0
			if result.TotalBytes > 0 {
				percentage = float64(contrib.BytesInOutput) / float64(result.TotalBytes) * 100
			}

			result.InputFiles = append(result.InputFiles, FileAnalysis{
				Path:          displayPath(inputPath, root),
				Bytes:         info.Bytes,
				BytesInOutput: contrib.BytesInOutput,
				Percentage:    percentage,
				ImportCount:   len(info.Imports),
				IsEntry:       out.EntryPoint == inputPath,
			})
		}
		break
	}

	sort.Slice(result.InputFiles, func(i, j int) bool {
		if result.InputFiles[i].BytesInOutput != result.InputFiles[j].BytesInOutput {
			return result.InputFiles[i].BytesInOutput > result.InputFiles[j].BytesInOutput
		}
		return result.InputFiles[i].Path < result.InputFiles[j].Path
	})
	sort.Strings(result.ExternalImports)

	return result
}

// displayPath strips root from metafile paths, which esbuild reports
// relative to its working directory or absolute for plugin-loaded files
func displayPath(path, root string) string {
	if root == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
