package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxbase-eu/preppy/internal/project"
)

func TestNewPlanView(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json": `{"name":"foo","version":"1.0.0","main":"lib/index.js","module":"lib/index.mjs","types":"lib/index.d.ts","browser":"dist/foo.js"}`,
		"src/index.ts": "export const a = 1\n",
	})

	p, err := project.Load(root, project.Flags{})
	require.NoError(t, err)

	view := newPlanView(p)
	assert.Equal(t, "foo@1.0.0", view.Package)
	require.Len(t, view.Jobs, 2)
	assert.Equal(t, "esm", view.Jobs[0].Format)
	assert.Equal(t, "cjs", view.Jobs[1].Format)
	require.NotNil(t, view.Types)
	assert.Equal(t, "lib", view.Types.DestinationDir)
	require.Len(t, view.Warnings, 1)

	table := view.Table()
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "types", table.Rows[2][2])
}

func TestPlanView_TableTypesBetweenJobs(t *testing.T) {
	view := planView{
		Jobs: []jobView{
			{Input: "src/index.ts", Target: "lib", Format: "esm", Output: "lib/index.mjs"},
			{Input: "src/browser.ts", Target: "browser", Format: "esm", Output: "dist/browser.js"},
		},
		Types: &typesView{Input: "src/index.ts", DestinationDir: "lib", AfterJob: 1},
	}

	rows := view.Table().Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "-", rows[1][0])
	assert.Equal(t, "2", rows[2][0])
}
