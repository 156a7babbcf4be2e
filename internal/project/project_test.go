package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxbase-eu/preppy/internal/entry"
	"github.com/fluxbase-eu/preppy/internal/matrix"
	"github.com/fluxbase-eu/preppy/internal/plan"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
}

func TestLoad_SingleMainScenario(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"name":"foo","version":"1.0.0","main":"lib/index.js"}`,
		"src/index.js": `export default 1`,
	})

	p, err := Load(root, Flags{})
	require.NoError(t, err)

	assert.Equal(t, entry.Set{Library: "src/index.js"}, p.Entries)
	assert.Equal(t, matrix.Matrix{Main: "lib/index.js"}, p.Outputs)
	assert.Empty(t, p.Warnings)
	require.Len(t, p.Plan.Jobs, 1)
	assert.Equal(t, plan.Job{
		Input:  "src/index.js",
		Target: plan.TargetLibrary,
		Format: plan.FormatCommonJS,
		Output: "lib/index.js",
	}, p.Plan.Jobs[0])
	assert.Equal(t, "/*! foo v1.0.0 */", p.Manifest.Banner())
}

func TestLoad_BrowserFieldWithoutEntry(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"name":"foo","version":"1.0.0","main":"lib/index.js","browser":"dist/foo.umd.js"}`,
		"src/index.js": `export default 1`,
	})

	p, err := Load(root, Flags{})
	require.NoError(t, err)

	require.Len(t, p.Warnings, 1)
	var missing *matrix.MissingOutputError
	require.True(t, errors.As(p.Warnings[0], &missing))
	assert.Equal(t, matrix.KindBrowser, missing.Kind)

	for _, job := range p.Plan.Jobs {
		assert.NotEqual(t, plan.FormatUMD, job.Format)
	}
}

func TestLoad_OutputFolderNode(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json":      `{"name":"foo","version":"1.0.0"}`,
		"test/src/index.js": `export default 1`,
	})

	p, err := Load(root, Flags{InputNode: "./test/src/index.js", OutputFolder: "./test/lib"})
	require.NoError(t, err)

	require.Len(t, p.Plan.Jobs, 2)
	assert.Equal(t, "test/lib/node.commonjs.js", p.Plan.Jobs[0].Output)
	assert.Equal(t, "test/lib/node.esmodule.js", p.Plan.Jobs[1].Output)
}

func TestLoad_MissingOverride(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"name":"foo","version":"1.0.0","main":"lib/index.js"}`,
	})

	_, err := Load(root, Flags{InputLibrary: "src/missing.ts"})
	var missing *entry.MissingFileError
	require.True(t, errors.As(err, &missing))
}

func TestLoad_MissingManifest(t *testing.T) {
	_, err := Load(t.TempDir(), Flags{})
	assert.Error(t, err)
}

func TestLoad_NothingToBuild(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"name":"foo","version":"1.0.0","main":"lib/index.js"}`,
	})

	p, err := Load(root, Flags{})
	require.NoError(t, err)
	assert.True(t, p.Plan.Empty())
	assert.Len(t, p.Warnings, 1)
}
